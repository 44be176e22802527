package jira

import (
	"errors"
	"fmt"
)

// ErrSkipped is returned by write operations that had nothing to send:
// an empty issue key, a blank comment, or a custom field the instance does
// not define.
var ErrSkipped = errors.New("jira: nothing to apply")

// Operation names a client operation for error reporting.
type Operation struct {
	// Name is the short identifier reported with generic failures.
	Name string

	// Activity completes the sentence "authentication failed while ...".
	Activity string
}

var (
	opLoadFields        = Operation{"Load field metadata", "loading field metadata"}
	opMyTickets         = Operation{"GetMyTickets", "loading tickets"}
	opFieldSnapshot     = Operation{"GetIssueFieldSnapshot", "loading issue details"}
	opComments          = Operation{"GetIssueComments", "loading comments"}
	opHistory           = Operation{"GetIssueHistory", "loading history"}
	opTransitions       = Operation{"GetTransitions", "loading transitions"}
	opBoards            = Operation{"GetAllBoards", "loading boards"}
	opBoardSprints      = Operation{"GetBoardSprints", "loading sprints"}
	opSprintIssues      = Operation{"GetIssuesForSprint", "loading sprint issues"}
	opResolveAccount    = Operation{"ResolveUserAccountId", "resolving an account id"}
	opUpdateDescription = Operation{"UpdateIssueDescription", "updating the description"}
	opAddComment        = Operation{"AddComment", "adding a comment"}
	opUpdateComment     = Operation{"UpdateComment", "updating a comment"}
	opUpdateStoryPoints = Operation{"UpdateStoryPoints", "updating story points"}
	opUpdateAssignee    = Operation{"UpdateAssignee", "updating the assignee"}
	opUpdateDueDate     = Operation{"UpdateDueDate", "updating the due date"}
	opUpdateSprint      = Operation{"UpdateSprint", "updating the sprint"}
	opTransitionIssue   = Operation{"TransitionIssue", "transitioning the issue"}
)

// AuthError reports rejected credentials or missing permission (HTTP 401/403).
// Callers should ask for new credentials rather than just show the error.
type AuthError struct {
	Operation  Operation
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Jira authentication failed while %s. Please configure your API token.", e.Operation.Activity)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// OperationError is any other failure: network errors, non-2xx responses,
// and bodies that do not match the expected JSON shape.
type OperationError struct {
	Operation  Operation
	StatusCode int
	Err        error
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed: %v (status: %d)", e.Operation.Name, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation.Name, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is, or wraps, an *AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func unexpectedShape(op Operation, err error) error {
	return &OperationError{
		Operation: op,
		Err:       fmt.Errorf("unexpected JSON: %w", err),
	}
}
