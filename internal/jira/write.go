package jira

import (
	"context"
	"net/http"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jiradesk/internal/adf"
	"github.com/danielolaszy/jiradesk/internal/logging"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (c *Client) updateFields(ctx context.Context, op Operation, issueKey string, fields map[string]any) error {
	payload := fieldsPayload{Fields: fields}
	return c.gateway.Do(ctx, op, http.MethodPut, platformPath("/issue/%s", segment(issueKey)), nil, payload, nil)
}

// UpdateDescription replaces the issue description with plainText.
func (c *Client) UpdateDescription(ctx context.Context, issueKey, plainText string) error {
	if blank(issueKey) {
		return ErrSkipped
	}
	return c.updateFields(ctx, opUpdateDescription, issueKey, map[string]any{
		"description": adf.Encode(plainText),
	})
}

// AddComment posts a new comment. Blank comments are not sent.
func (c *Client) AddComment(ctx context.Context, issueKey, plainText string) error {
	if blank(issueKey) || blank(plainText) {
		return ErrSkipped
	}
	payload := commentPayload{Body: adf.Encode(plainText)}
	return c.gateway.Do(ctx, opAddComment, http.MethodPost, platformPath("/issue/%s/comment", segment(issueKey)), nil, payload, nil)
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, issueKey, commentID, plainText string) error {
	if blank(issueKey) || blank(commentID) {
		return ErrSkipped
	}
	payload := commentPayload{Body: adf.Encode(plainText)}
	path := platformPath("/issue/%s/comment/%s", segment(issueKey), segment(commentID))
	return c.gateway.Do(ctx, opUpdateComment, http.MethodPut, path, nil, payload, nil)
}

// UpdateStoryPoints sets the estimate; nil clears it. It is skipped when the
// instance has no story points field.
func (c *Client) UpdateStoryPoints(ctx context.Context, issueKey string, ids FieldIDs, points *float64) error {
	if blank(issueKey) || ids.StoryPoints == "" {
		return ErrSkipped
	}

	var value any
	if points != nil {
		value = *points
	}
	return c.updateFields(ctx, opUpdateStoryPoints, issueKey, map[string]any{ids.StoryPoints: value})
}

// UpdateSprint moves the issue into a sprint; nil removes it from its
// sprint. It is skipped when the instance has no sprint field.
func (c *Client) UpdateSprint(ctx context.Context, issueKey string, ids FieldIDs, sprintID *int) error {
	if blank(issueKey) || ids.Sprint == "" {
		return ErrSkipped
	}

	var value any
	if sprintID != nil {
		value = []int{*sprintID}
	}
	return c.updateFields(ctx, opUpdateSprint, issueKey, map[string]any{ids.Sprint: value})
}

// UpdateDueDate sets the due date (date part only); nil clears it.
func (c *Client) UpdateDueDate(ctx context.Context, issueKey string, due *time.Time) error {
	if blank(issueKey) {
		return ErrSkipped
	}

	var value any
	if due != nil {
		value = due.Format(dateLayout)
	}
	return c.updateFields(ctx, opUpdateDueDate, issueKey, map[string]any{"duedate": value})
}

// ResolveAccountID looks up a user by free text and returns the first
// match's account id, or "" when nothing matched.
func (c *Client) ResolveAccountID(ctx context.Context, query string) (string, error) {
	if blank(query) {
		return "", nil
	}

	payload := userSearchPayload{Query: query, MaxResults: 1}
	var users []jira.User
	if err := c.gateway.Do(ctx, opResolveAccount, http.MethodPost, platformPath("/user/search/query"), nil, payload, &users); err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].AccountID, nil
}

// UpdateAssignee assigns the issue to the user matching input. The lookup is
// best effort: when it finds nothing (or fails for reasons other than
// authentication) input is used as the account id itself. A blank input
// unassigns the issue.
func (c *Client) UpdateAssignee(ctx context.Context, issueKey, input string) error {
	if blank(issueKey) {
		return ErrSkipped
	}

	var payload assigneePayload
	if query := strings.TrimSpace(input); query != "" {
		resolved, err := c.ResolveAccountID(ctx, query)
		if err != nil {
			if IsAuth(err) {
				return err
			}
			logging.Warn("account lookup failed, using input as account id",
				"query", query,
				"error", err)
		}
		if resolved == "" {
			resolved = query
		}
		payload.AccountID = &resolved
	}

	path := platformPath("/issue/%s/assignee", segment(issueKey))
	return c.gateway.Do(ctx, opUpdateAssignee, http.MethodPut, path, nil, payload, nil)
}

// TransitionIssue applies a workflow transition.
func (c *Client) TransitionIssue(ctx context.Context, issueKey, transitionID string) error {
	if blank(issueKey) || blank(transitionID) {
		return ErrSkipped
	}

	var payload transitionPayload
	payload.Transition.ID = transitionID
	path := platformPath("/issue/%s/transitions", segment(issueKey))
	return c.gateway.Do(ctx, opTransitionIssue, http.MethodPost, path, nil, payload, nil)
}
