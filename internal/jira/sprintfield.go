package jira

import (
	"encoding/json"
	"strings"

	"github.com/danielolaszy/jiradesk/pkg/models"
)

// defaultSprintName labels a sprint whose value carries no usable name.
const defaultSprintName = "Sprint"

// The sprint custom field arrives in several shapes depending on the
// instance: an array of sprint objects, a single object, or the legacy
// "com.atlassian.greenhopper...Sprint@1a2b[id=1,name=Foo,...]" string.

// ticketSprintName returns the display name for a ticket listing.
func ticketSprintName(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.NoSprint
	}

	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return models.NoSprint
		}
		switch first := x[0].(type) {
		case map[string]any:
			return nameOr(first, defaultSprintName)
		case string:
			return first
		}
	case map[string]any:
		return nameOr(x, defaultSprintName)
	case string:
		return x
	}
	return models.NoSprint
}

// snapshotSprint extracts the sprint id and name for an issue snapshot.
func snapshotSprint(raw json.RawMessage) (*int, string) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, ""
	}

	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return nil, ""
		}
		id, name := extractSprint(x[0])
		if s, ok := x[0].(string); ok && name == "" {
			name = legacySprintName(s)
		}
		return id, name
	case map[string]any:
		return extractSprint(x)
	case string:
		return nil, legacySprintName(x)
	}
	return nil, ""
}

func extractSprint(element any) (*int, string) {
	m, ok := element.(map[string]any)
	if !ok {
		return nil, ""
	}

	var id *int
	if f, ok := m["id"].(float64); ok {
		n := int(f)
		id = &n
	}
	name, _ := m["name"].(string)
	return id, name
}

func nameOr(m map[string]any, fallback string) string {
	if name, ok := m["name"].(string); ok {
		return name
	}
	return fallback
}

// legacySprintName pulls the name= attribute out of a serialized sprint.
// The value ends at the next ',' or ']'; an empty value yields the default.
func legacySprintName(raw string) string {
	idx := indexFold(raw, "name=")
	if idx < 0 {
		return defaultSprintName
	}

	after := raw[idx+len("name="):]
	if end := strings.IndexAny(after, ",]"); end >= 0 {
		after = after[:end]
	}
	if name := strings.TrimSpace(after); name != "" {
		return name
	}
	return defaultSprintName
}

// indexFold is a case-insensitive strings.Index. Offsets
// refer to s itself.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
