package jira

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/danielolaszy/jiradesk/internal/logging"
	"github.com/danielolaszy/jiradesk/pkg/models"
)

const agilePageSize = 50

// Boards lists all boards, optionally restricted to a board type ("scrum",
// "kanban").
func (c *Client) Boards(ctx context.Context, boardType string) ([]Board, error) {
	return PaginateOffset(ctx, func(ctx context.Context, startAt int) (OffsetPage[Board], error) {
		query := url.Values{
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(agilePageSize)},
		}
		if boardType != "" {
			query.Set("type", boardType)
		}

		var resp valuesResponse[Board]
		if err := c.gateway.Do(ctx, opBoards, http.MethodGet, agilePath("/board"), query, nil, &resp); err != nil {
			return OffsetPage[Board]{}, err
		}
		return OffsetPage[Board]{Items: resp.Values, Total: resp.Total, Last: resp.IsLast}, nil
	})
}

// BoardSprints lists a board's sprints, optionally filtered by state
// ("active", "future", "closed").
func (c *Client) BoardSprints(ctx context.Context, boardID int, state string) ([]Sprint, error) {
	path := agilePath("/board/%d/sprint", boardID)

	return PaginateOffset(ctx, func(ctx context.Context, startAt int) (OffsetPage[Sprint], error) {
		query := url.Values{
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(agilePageSize)},
		}
		if state != "" {
			query.Set("state", state)
		}

		var resp valuesResponse[Sprint]
		if err := c.gateway.Do(ctx, opBoardSprints, http.MethodGet, path, query, nil, &resp); err != nil {
			return OffsetPage[Sprint]{}, err
		}
		return OffsetPage[Sprint]{Items: resp.Values, Total: resp.Total, Last: resp.IsLast}, nil
	})
}

// MostRecentActiveSprint finds the active sprint with the latest start date
// across all scrum boards. The per-board sprint listings run concurrently
// and feed one shared reducer; the result is returned once every listing
// has finished. A nil sprint means no active sprint was seen.
//
// Failures of individual listings do not stop the others; they are
// combined into the returned error (see multierr.Errors) alongside
// whatever result the remaining boards produced.
func (c *Client) MostRecentActiveSprint(ctx context.Context) (*models.ActiveSprint, error) {
	boards, errs := c.Boards(ctx, "scrum")
	if len(boards) == 0 {
		return nil, errs
	}

	var (
		reducer sprintReducer
		mu      sync.Mutex
		wg      conc.WaitGroup
	)
	for _, board := range boards {
		wg.Go(func() {
			sprints, err := c.BoardSprints(ctx, board.ID, "active")
			for _, s := range sprints {
				reducer.offer(s)
			}
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	best := reducer.result()
	logging.Debug("active sprint aggregation finished",
		"boards", len(boards),
		"found", best != nil)

	return best, errs
}

// sprintReducer keeps the sprint with the latest valid start date. The
// first sprint offered is kept until one with a strictly later valid start
// arrives; sprints without a parsable start never replace a best. Ties are
// therefore won by whichever sprint was offered first.
type sprintReducer struct {
	mu       sync.Mutex
	has      bool
	hasStart bool
	best     models.ActiveSprint
	start    time.Time
}

func (r *sprintReducer) offer(s Sprint) {
	start, ok := parseTimestamp(s.StartDate)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.has || (ok && (!r.hasStart || start.After(r.start))) {
		r.has = true
		r.hasStart = ok
		r.start = start
		r.best = models.ActiveSprint{ID: s.ID, Name: s.Name}
		if ok {
			t := start
			r.best.Start = &t
		}
	}
}

func (r *sprintReducer) result() *models.ActiveSprint {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.has {
		return nil
	}
	best := r.best
	return &best
}

// SprintIssues lists the issues of one sprint. Pages advance by the
// server-declared page size.
func (c *Client) SprintIssues(ctx context.Context, sprintID int) ([]models.Ticket, error) {
	if sprintID <= 0 {
		return nil, nil
	}
	path := agilePath("/sprint/%d/issue", sprintID)

	return PaginateOffset(ctx, func(ctx context.Context, startAt int) (OffsetPage[models.Ticket], error) {
		query := url.Values{
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(agilePageSize)},
		}

		var resp sprintIssuesResponse
		if err := c.gateway.Do(ctx, opSprintIssues, http.MethodGet, path, query, nil, &resp); err != nil {
			return OffsetPage[models.Ticket]{}, err
		}

		page := OffsetPage[models.Ticket]{Total: resp.Total, PageSize: resp.MaxResults}
		for _, issue := range resp.Issues {
			sprint := models.CurrentSprint
			var ref map[string]any
			if issue.field("sprint", &ref) {
				sprint = nameOr(ref, models.CurrentSprint)
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
