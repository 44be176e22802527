// Package adf converts between plain text and the Atlassian Document Format
// used by Jira Cloud for long-text fields such as descriptions and comments.
//
// Encoding writes one paragraph per input line. Decoding walks an arbitrary
// document and flattens it back to lines. The pair is not a perfect round
// trip: hard breaks inside a paragraph decode to separate lines but encode
// back as separate paragraphs.
package adf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node types understood by the decoder.
const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"
)

// Document is the top-level ADF node sent to Jira.
type Document struct {
	Version int         `json:"version"`
	Type    string      `json:"type"`
	Content []Paragraph `json:"content"`
}

// Paragraph is a block node holding inline text.
type Paragraph struct {
	Type    string `json:"type"`
	Content []Text `json:"content"`
}

// Text is an inline text node. Empty text is kept so blank lines survive.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Encode builds a document with one paragraph per line of plainText.
// Blank lines become paragraphs holding an empty text node.
func Encode(plainText string) Document {
	lines := strings.Split(plainText, "\n")
	content := make([]Paragraph, 0, len(lines))
	for _, line := range lines {
		content = append(content, Paragraph{
			Type:    TypeParagraph,
			Content: []Text{{Type: TypeText, Text: line}},
		})
	}

	return Document{
		Version: 1,
		Type:    TypeDoc,
		Content: content,
	}
}

// kind tags a decoded JSON value for the walk.
type kind int

const (
	kindNull kind = iota
	kindArray
	kindDoc
	kindParagraph
	kindText
	kindHardBreak
	kindOther
	kindScalar
)

func classify(node any) kind {
	switch v := node.(type) {
	case nil:
		return kindNull
	case []any:
		return kindArray
	case map[string]any:
		t, _ := v["type"].(string)
		switch t {
		case TypeDoc:
			return kindDoc
		case TypeParagraph:
			return kindParagraph
		case TypeText:
			return kindText
		case TypeHardBreak:
			return kindHardBreak
		default:
			return kindOther
		}
	default:
		return kindScalar
	}
}

// lineBuffer accumulates the decoded lines.
type lineBuffer struct {
	lines []string
}

func (b *lineBuffer) newLine() {
	b.lines = append(b.lines, "")
}

func (b *lineBuffer) ensureLine() {
	if len(b.lines) == 0 {
		b.newLine()
	}
}

func (b *lineBuffer) appendText(s string) {
	b.ensureLine()
	b.lines[len(b.lines)-1] += s
}

// Decode flattens a generic JSON value (as produced by encoding/json into
// an any) into plain text.
func Decode(node any) string {
	var buf lineBuffer
	walk(node, &buf)

	lines := buf.lines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DecodeJSON decodes raw ADF JSON. A JSON string is returned as-is, which
// covers comment bodies still stored as wiki text.
func DecodeJSON(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	if s, ok := node.(string); ok {
		return s, nil
	}
	return Decode(node), nil
}

func walk(node any, buf *lineBuffer) {
	switch classify(node) {
	case kindNull, kindScalar:
		return
	case kindArray:
		walkBlocks(node.([]any), buf)
	case kindDoc:
		content, _ := node.(map[string]any)["content"].([]any)
		walkBlocks(content, buf)
	case kindParagraph:
		buf.ensureLine()
		content, _ := node.(map[string]any)["content"].([]any)
		for _, child := range content {
			walk(child, buf)
		}
	case kindHardBreak:
		buf.newLine()
	case kindText:
		text, _ := node.(map[string]any)["text"].(string)
		buf.appendText(text)
	case kindOther:
		content, ok := node.(map[string]any)["content"].([]any)
		if !ok {
			return
		}
		for _, child := range content {
			walk(child, buf)
		}
	}
}

// walkBlocks visits sibling blocks, starting a new line between them.
func walkBlocks(blocks []any, buf *lineBuffer) {
	for i, child := range blocks {
		if i > 0 {
			buf.newLine()
		}
		walk(child, buf)
	}
}
