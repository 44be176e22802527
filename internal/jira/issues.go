package jira

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jiradesk/internal/adf"
	"github.com/danielolaszy/jiradesk/pkg/models"
)

const (
	// MyTicketsJQL selects the caller's open tickets, most recently updated first.
	MyTicketsJQL = "assignee = currentUser() and status NOT IN (Closed, Done) ORDER BY updated DESC"

	searchPageSize  = 1000
	commentPageSize = 50
)

// MyTickets lists the open tickets assigned to the caller, following
// nextPageToken until the search is exhausted. ids.Sprint, when known, adds
// the sprint name to each ticket.
func (c *Client) MyTickets(ctx context.Context, ids FieldIDs) ([]models.Ticket, error) {
	fields := []string{"key", "summary", "status", "updated"}
	if ids.Sprint != "" {
		fields = append(fields, ids.Sprint)
	}

	return PaginateCursor(ctx, func(ctx context.Context, token string) (CursorPage[models.Ticket], error) {
		req := searchRequest{
			JQL:           MyTicketsJQL,
			MaxResults:    searchPageSize,
			Fields:        fields,
			NextPageToken: token,
		}

		var resp searchResponse
		if err := c.gateway.Do(ctx, opMyTickets, http.MethodPost, platformPath("/search/jql"), nil, req, &resp); err != nil {
			return CursorPage[models.Ticket]{}, err
		}

		page := CursorPage[models.Ticket]{NextToken: resp.NextPageToken}
		for _, issue := range resp.Issues {
			sprint := models.NoSprint
			if ids.Sprint != "" {
				if raw, ok := issue.Fields[ids.Sprint]; ok {
					sprint = ticketSprintName(raw)
				}
			}

			page.Items = append(page.Items, models.Ticket{
				Key:     issue.Key,
				Summary: issue.summary(),
				Status:  issue.status(),
				Sprint:  sprint,
			})
		}
		return page, nil
	})
}

// IssueFieldSnapshot reads the editable fields of one issue. An empty key
// yields an empty snapshot without a request.
func (c *Client) IssueFieldSnapshot(ctx context.Context, issueKey string, ids FieldIDs) (models.IssueFieldSnapshot, error) {
	var snap models.IssueFieldSnapshot
	if strings.TrimSpace(issueKey) == "" {
		return snap, nil
	}

	fields := []string{"description", "assignee", "duedate"}
	if ids.StoryPoints != "" {
		fields = append(fields, ids.StoryPoints)
	}
	if ids.Sprint != "" {
		fields = append(fields, ids.Sprint)
	}
	query := url.Values{"fields": {strings.Join(fields, ",")}}

	var issue issueDTO
	if err := c.gateway.Do(ctx, opFieldSnapshot, http.MethodGet, platformPath("/issue/%s", segment(issueKey)), query, nil, &issue); err != nil {
		return snap, err
	}

	if raw, ok := issue.Fields["description"]; ok && !isNull(raw) {
		snap.Description, _ = adf.DecodeJSON(raw)
	}

	if ids.StoryPoints != "" {
		var points float64
		if issue.field(ids.StoryPoints, &points) {
			snap.StoryPoints = &points
		}
	}

	var assignee userRef
	if issue.field("assignee", &assignee) {
		snap.AssigneeDisplayName = assignee.DisplayName
		snap.AssigneeAccountID = assignee.AccountID
	}

	var due string
	if issue.field("duedate", &due) && due != "" {
		if d, err := time.Parse(dateLayout, due); err == nil {
			snap.DueDate = &d
		}
	}

	if ids.Sprint != "" {
		if raw, ok := issue.Fields[ids.Sprint]; ok {
			snap.SprintID, snap.SprintName = snapshotSprint(raw)
		}
	}

	return snap, nil
}

// IssueComments lists all comments of an issue, oldest first as returned by
// the service.
func (c *Client) IssueComments(ctx context.Context, issueKey string) ([]models.Comment, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, nil
	}
	path := platformPath("/issue/%s/comment", segment(issueKey))

	return PaginateOffset(ctx, func(ctx context.Context, startAt int) (OffsetPage[models.Comment], error) {
		query := url.Values{
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(commentPageSize)},
		}

		var resp commentsResponse
		if err := c.gateway.Do(ctx, opComments, http.MethodGet, path, query, nil, &resp); err != nil {
			return OffsetPage[models.Comment]{}, err
		}

		page := OffsetPage[models.Comment]{Total: resp.Total}
		for _, cm := range resp.Comments {
			created, _ := parseTimestamp(cm.Created)
			body, _ := adf.DecodeJSON(cm.Body)
			page.Items = append(page.Items, models.Comment{
				ID:      cm.ID,
				Author:  cm.Author.DisplayName,
				Created: created,
				Body:    body,
			})
		}
		return page, nil
	})
}

// IssueHistory flattens the issue changelog into one entry per changed
// field, newest first. Entries with the same timestamp are ordered by author
// name, descending and case-insensitive.
func (c *Client) IssueHistory(ctx context.Context, issueKey string) ([]models.HistoryEntry, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, nil
	}

	query := url.Values{
		"expand": {"changelog"},
		"fields": {"summary"},
	}

	var resp struct {
		Changelog jira.Changelog `json:"changelog"`
	}
	if err := c.gateway.Do(ctx, opHistory, http.MethodGet, platformPath("/issue/%s", segment(issueKey)), query, nil, &resp); err != nil {
		return nil, err
	}

	var history []models.HistoryEntry
	for _, h := range resp.Changelog.Histories {
		when, _ := parseTimestamp(h.Created)
		for _, item := range h.Items {
			history = append(history, models.HistoryEntry{
				Author: h.Author.DisplayName,
				When:   when,
				Field:  item.Field,
				From:   item.FromString,
				To:     item.ToString,
			})
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i], history[j]
		if !a.When.Equal(b.When) {
			return a.When.After(b.When)
		}
		return strings.ToLower(a.Author) > strings.ToLower(b.Author)
	})

	return history, nil
}

// Transitions lists the workflow transitions currently available for an issue.
func (c *Client) Transitions(ctx context.Context, issueKey string) ([]models.Transition, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, nil
	}

	var resp struct {
		Transitions []jira.Transition `json:"transitions"`
	}
	if err := c.gateway.Do(ctx, opTransitions, http.MethodGet, platformPath("/issue/%s/transitions", segment(issueKey)), nil, nil, &resp); err != nil {
		return nil, err
	}

	var list []models.Transition
	for _, t := range resp.Transitions {
		if t.ID == "" {
			continue
		}
		list = append(list, models.Transition{ID: t.ID, Name: t.Name})
	}
	return list, nil
}
