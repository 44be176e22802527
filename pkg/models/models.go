// Package models defines data structures shared across the application.
package models

import (
	"time"
)

const (
	// NoSprint is the sprint label for tickets outside any sprint.
	NoSprint = "No Sprint"

	// CurrentSprint is the sprint label used for issues listed from a sprint
	// whose payload does not name it.
	CurrentSprint = "This Sprint"
)

// Ticket represents one row of a ticket listing.
type Ticket struct {
	// Key is the issue key (e.g., "ABC-123")
	Key string

	// Summary is the issue's one-line title
	Summary string

	// Status is the workflow status name (e.g., "In Progress")
	Status string

	// Sprint is the sprint name, or NoSprint when the issue has none
	Sprint string
}

// IssueFieldSnapshot holds the editable fields of a single issue.
type IssueFieldSnapshot struct {
	// Description is the plain text rendering of the rich-text description
	Description string

	// StoryPoints is nil when the issue has no estimate
	StoryPoints *float64

	// AssigneeDisplayName is the assignee's human-readable name
	AssigneeDisplayName string

	// AssigneeAccountID is the assignee's account identifier
	AssigneeAccountID string

	// SprintID is nil when the sprint could not be identified
	SprintID *int

	// SprintName is the name of the issue's sprint, if any
	SprintName string

	// DueDate is a calendar date at UTC midnight, nil when unset
	DueDate *time.Time
}

// Comment is a single issue comment.
type Comment struct {
	ID      string
	Author  string
	Created time.Time

	// Body is the comment text in the plain form used for editing
	Body string
}

// HistoryEntry is one changed field within an issue's changelog.
type HistoryEntry struct {
	Author string
	When   time.Time
	Field  string
	From   string
	To     string
}

// Transition is a workflow move currently available for an issue.
type Transition struct {
	ID   string
	Name string
}

// ActiveSprint identifies the most recently started active sprint.
type ActiveSprint struct {
	ID    int
	Name  string
	Start *time.Time
}
