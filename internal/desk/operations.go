package desk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FetchMyTickets lists the caller's open tickets. The result also becomes
// CurrentTickets.
func (f *Facade) FetchMyTickets() uuid.UUID {
	return f.start("GetMyTickets", func(ctx context.Context, op *operation) {
		ids, ok := op.fieldIDs(ctx)
		if !ok {
			return
		}

		tickets, err := op.client.MyTickets(ctx, ids)
		if err != nil {
			op.fail(err)
		}
		f.keepTickets(op, tickets)
		op.emit(Event{Kind: TicketsReady, Tickets: tickets})
	})
}

// FetchIssueFieldSnapshot reads the editable fields of one issue.
func (f *Facade) FetchIssueFieldSnapshot(issueKey string) uuid.UUID {
	return f.start("GetIssueFieldSnapshot", func(ctx context.Context, op *operation) {
		ids, ok := op.fieldIDs(ctx)
		if !ok {
			return
		}

		snap, err := op.client.IssueFieldSnapshot(ctx, issueKey, ids)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: SnapshotReady, IssueKey: issueKey, Snapshot: snap})
	})
}

// FetchComments lists the comments of one issue.
func (f *Facade) FetchComments(issueKey string) uuid.UUID {
	return f.start("GetIssueComments", func(ctx context.Context, op *operation) {
		comments, err := op.client.IssueComments(ctx, issueKey)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: CommentsReady, IssueKey: issueKey, Comments: comments})
	})
}

// FetchHistory lists the change history of one issue.
func (f *Facade) FetchHistory(issueKey string) uuid.UUID {
	return f.start("GetIssueHistory", func(ctx context.Context, op *operation) {
		history, err := op.client.IssueHistory(ctx, issueKey)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: HistoryReady, IssueKey: issueKey, History: history})
	})
}

// FetchTransitions lists the transitions available for one issue.
func (f *Facade) FetchTransitions(issueKey string) uuid.UUID {
	return f.start("GetTransitions", func(ctx context.Context, op *operation) {
		transitions, err := op.client.Transitions(ctx, issueKey)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: TransitionsReady, IssueKey: issueKey, Transitions: transitions})
	})
}

// FetchMostRecentActiveSprint finds the active sprint with the latest start
// across all scrum boards. Each failed board is reported separately.
func (f *Facade) FetchMostRecentActiveSprint() uuid.UUID {
	return f.start("GetMostRecentActiveSprint", func(ctx context.Context, op *operation) {
		sprint, err := op.client.MostRecentActiveSprint(ctx)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: ActiveSprintReady, Sprint: sprint})
	})
}

// FetchSprintIssues lists the issues of one sprint.
func (f *Facade) FetchSprintIssues(sprintID int) uuid.UUID {
	return f.start("GetIssuesForSprint", func(ctx context.Context, op *operation) {
		tickets, err := op.client.SprintIssues(ctx, sprintID)
		if err != nil {
			op.fail(err)
		}
		op.emit(Event{Kind: SprintIssuesReady, SprintID: sprintID, Tickets: tickets})
	})
}

// UpdateDescription replaces the description of an issue.
func (f *Facade) UpdateDescription(issueKey, text string) uuid.UUID {
	return f.start("UpdateIssueDescription", func(ctx context.Context, op *operation) {
		op.written(op.client.UpdateDescription(ctx, issueKey, text), "Description updated")
	})
}

// AddComment posts a comment on an issue.
func (f *Facade) AddComment(issueKey, text string) uuid.UUID {
	return f.start("AddComment", func(ctx context.Context, op *operation) {
		op.written(op.client.AddComment(ctx, issueKey, text), "Comment posted")
	})
}

// UpdateComment replaces the body of a comment.
func (f *Facade) UpdateComment(issueKey, commentID, text string) uuid.UUID {
	return f.start("UpdateComment", func(ctx context.Context, op *operation) {
		op.written(op.client.UpdateComment(ctx, issueKey, commentID, text), "Comment updated")
	})
}

// UpdateStoryPoints sets or, with nil, clears the estimate of an issue.
func (f *Facade) UpdateStoryPoints(issueKey string, points *float64) uuid.UUID {
	return f.start("UpdateStoryPoints", func(ctx context.Context, op *operation) {
		ids, ok := op.fieldIDs(ctx)
		if !ok {
			return
		}
		op.written(op.client.UpdateStoryPoints(ctx, issueKey, ids, points), "Story points updated")
	})
}

// UpdateAssignee assigns an issue to the user matching query, or unassigns
// it when query is blank.
func (f *Facade) UpdateAssignee(issueKey, query string) uuid.UUID {
	return f.start("UpdateAssignee", func(ctx context.Context, op *operation) {
		op.written(op.client.UpdateAssignee(ctx, issueKey, query), "Assignee updated")
	})
}

// UpdateDueDate sets or, with nil, clears the due date of an issue.
func (f *Facade) UpdateDueDate(issueKey string, due *time.Time) uuid.UUID {
	return f.start("UpdateDueDate", func(ctx context.Context, op *operation) {
		op.written(op.client.UpdateDueDate(ctx, issueKey, due), "Due date updated")
	})
}

// UpdateSprint moves an issue into a sprint or, with nil, out of its sprint.
func (f *Facade) UpdateSprint(issueKey string, sprintID *int) uuid.UUID {
	return f.start("UpdateSprint", func(ctx context.Context, op *operation) {
		ids, ok := op.fieldIDs(ctx)
		if !ok {
			return
		}
		op.written(op.client.UpdateSprint(ctx, issueKey, ids, sprintID), "Sprint updated")
	})
}

// TransitionIssue applies a workflow transition to an issue.
func (f *Facade) TransitionIssue(issueKey, transitionID string) uuid.UUID {
	return f.start("TransitionIssue", func(ctx context.Context, op *operation) {
		op.written(op.client.TransitionIssue(ctx, issueKey, transitionID), "Transition applied")
	})
}

// Await collects the events of operation id until its Finished event. Events
// of other operations read meanwhile are passed to other, which may be nil.
func Await(ctx context.Context, events <-chan Event, id uuid.UUID, other func(Event)) ([]Event, error) {
	var got []Event
	for {
		select {
		case <-ctx.Done():
			return got, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return got, fmt.Errorf("event channel closed before operation %s finished", id)
			}
			if ev.OpID != id {
				if other != nil {
					other(ev)
				}
				continue
			}
			if ev.Kind == Finished {
				return got, nil
			}
			got = append(got, ev)
		}
	}
}
