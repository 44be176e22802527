package jira

import (
	"encoding/json"
	"strings"
	"time"
)

// Wire shapes for the endpoints the client reads. Custom fields are kept as
// raw JSON because their ids are only known at runtime.

type namedRef struct {
	Name string `json:"name"`
}

type userRef struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

type issueDTO struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type searchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []issueDTO `json:"issues"`
	NextPageToken string     `json:"nextPageToken"`
}

type commentDTO struct {
	ID      string          `json:"id"`
	Author  userRef         `json:"author"`
	Created string          `json:"created"`
	Body    json.RawMessage `json:"body"`
}

type commentsResponse struct {
	Comments []commentDTO `json:"comments"`
	Total    *int         `json:"total"`
}

// Board is an agile board as listed by the board endpoint.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Sprint is a board sprint. StartDate is kept verbatim; it may be absent or
// in a layout the client does not understand.
type Sprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
}

type valuesResponse[T any] struct {
	Values []T   `json:"values"`
	Total  *int  `json:"total"`
	IsLast *bool `json:"isLast"`
}

type sprintIssuesResponse struct {
	Issues     []issueDTO `json:"issues"`
	Total      *int       `json:"total"`
	MaxResults *int       `json:"maxResults"`
}

type fieldsPayload struct {
	Fields map[string]any `json:"fields"`
}

type commentPayload struct {
	Body any `json:"body"`
}

type assigneePayload struct {
	AccountID *string `json:"accountId"`
}

type transitionPayload struct {
	Transition struct {
		ID string `json:"id"`
	} `json:"transition"`
}

type userSearchPayload struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

// field decodes fields[name] into v, reporting whether a non-null value was
// present and matched v's type.
func (i issueDTO) field(name string, v any) bool {
	raw, ok := i.Fields[name]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func (i issueDTO) summary() string {
	var s string
	i.field("summary", &s)
	return s
}

func (i issueDTO) status() string {
	var status namedRef
	i.field("status", &status)
	return status.Name
}

// timestampLayouts are tried in order; Jira mostly sends the first form.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp returns the zero time and false when s is empty or not in
// a known layout.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const dateLayout = "2006-01-02"
