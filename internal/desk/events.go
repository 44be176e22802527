package desk

import (
	"github.com/google/uuid"

	"github.com/danielolaszy/jiradesk/pkg/models"
)

// Kind identifies what an Event reports.
type Kind int

const (
	TicketsReady Kind = iota + 1
	SnapshotReady
	CommentsReady
	HistoryReady
	TransitionsReady
	ActiveSprintReady
	SprintIssuesReady

	// Succeeded reports a completed write; Message holds a summary.
	Succeeded

	// Failed reports a generic failure of Operation.
	Failed

	// AuthRequired reports rejected credentials. Callers should ask for
	// a new API token.
	AuthRequired

	// Finished is the last event of every operation.
	Finished
)

var kindNames = map[Kind]string{
	TicketsReady:      "tickets-ready",
	SnapshotReady:     "snapshot-ready",
	CommentsReady:     "comments-ready",
	HistoryReady:      "history-ready",
	TransitionsReady:  "transitions-ready",
	ActiveSprintReady: "active-sprint-ready",
	SprintIssuesReady: "sprint-issues-ready",
	Succeeded:         "succeeded",
	Failed:            "failed",
	AuthRequired:      "auth-required",
	Finished:          "finished",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one result delivered on the facade's event channel. Only the
// payload fields matching Kind are set.
type Event struct {
	// OpID is the id returned by the method that started the operation.
	OpID uuid.UUID

	// Generation is the configuration generation the operation ran under.
	// Events with an older generation than Facade.Generation are stale.
	Generation uint64

	Kind Kind

	// IssueKey and SprintID echo the operation's input.
	IssueKey string
	SprintID int

	Tickets     []models.Ticket
	Snapshot    models.IssueFieldSnapshot
	Comments    []models.Comment
	History     []models.HistoryEntry
	Transitions []models.Transition

	// Sprint is nil when no active sprint was found.
	Sprint *models.ActiveSprint

	// Operation names the failed request for Failed events.
	Operation string

	Message string
	Err     error
}
