package desk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiradesk/internal/config"
	"github.com/danielolaszy/jiradesk/pkg/models"
)

const (
	fieldPath  = "/rest/api/3/field"
	searchPath = "/rest/api/3/search/jql"
)

func catalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[
		{"id": "customfield_10020", "name": "Sprint"},
		{"id": "customfield_10016", "name": "Story Points"}
	]`))
}

func search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"issues": [
		{"key": "ABC-1", "fields": {"summary": "First", "status": {"name": "To Do"}, "customfield_10020": [{"id": 3, "name": "Sprint 3"}]}}
	]}`))
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

// hits counts requests per path.
type hits struct {
	fields atomic.Int32
	search atomic.Int32
}

func (h *hits) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case fieldPath:
			h.fields.Add(1)
		case searchPath:
			h.search.Add(1)
		}
		next.ServeHTTP(w, r)
	})
}

func newFacade(t *testing.T, mux http.Handler) (*Facade, *hits) {
	t.Helper()

	h := &hits{}
	srv := httptest.NewServer(h.wrap(mux))
	t.Cleanup(srv.Close)

	f := New(context.Background(), Options{Buffer: 16})
	t.Cleanup(f.Close)

	require.NoError(t, f.Configure(config.JiraConfig{URL: srv.URL, Username: "me@example.com", Token: "token"}))
	return f, h
}

func await(t *testing.T, f *Facade, id uuid.UUID) []Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := Await(ctx, f.Events(), id, nil)
	require.NoError(t, err)
	for _, ev := range events {
		assert.Equal(t, id, ev.OpID)
	}
	return events
}

func kinds(events []Event) []Kind {
	var out []Kind
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func count(events []Event, kind Kind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestUnconfiguredFacadeFails(t *testing.T) {
	f := New(context.Background(), Options{Buffer: 4})
	defer f.Close()

	events := await(t, f, f.FetchComments("ABC-1"))
	require.Len(t, events, 1)
	assert.Equal(t, Failed, events[0].Kind)
	assert.ErrorIs(t, events[0].Err, ErrNotConfigured)
	assert.Zero(t, f.Generation())
}

func TestFetchMyTickets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+fieldPath, catalog)
	mux.HandleFunc("POST "+searchPath, search)
	f, h := newFacade(t, mux)

	events := await(t, f, f.FetchMyTickets())
	assert.Equal(t, []Kind{TicketsReady}, kinds(events))

	want := []models.Ticket{{Key: "ABC-1", Summary: "First", Status: "To Do", Sprint: "Sprint 3"}}
	assert.Equal(t, want, events[0].Tickets)
	assert.Equal(t, uint64(1), events[0].Generation)
	assert.Equal(t, want, f.CurrentTickets())

	// The field catalog is read once per configuration.
	await(t, f, f.FetchMyTickets())
	assert.EqualValues(t, 1, h.fields.Load())
	assert.EqualValues(t, 2, h.search.Load())
}

func TestFieldLoadAuthFailureAbortsOperation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+fieldPath, status(http.StatusUnauthorized))
	mux.HandleFunc("POST "+searchPath, search)
	mux.HandleFunc("PUT /rest/api/3/issue/ABC-1", status(http.StatusNoContent))
	f, h := newFacade(t, mux)

	events := await(t, f, f.FetchMyTickets())
	assert.Equal(t, []Kind{AuthRequired}, kinds(events))
	assert.Contains(t, events[0].Message, "Please configure your API token")
	assert.Zero(t, h.search.Load())

	points := 2.0
	events = await(t, f, f.UpdateStoryPoints("ABC-1", &points))
	assert.Equal(t, []Kind{AuthRequired}, kinds(events))
}

func TestFieldLoadGenericFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+fieldPath, status(http.StatusInternalServerError))
	mux.HandleFunc("POST "+searchPath, search)
	f, h := newFacade(t, mux)

	events := await(t, f, f.FetchMyTickets())
	require.Equal(t, []Kind{Failed, TicketsReady}, kinds(events))
	assert.Equal(t, "Load field metadata", events[0].Operation)
	require.Len(t, events[1].Tickets, 1)
	assert.Equal(t, models.NoSprint, events[1].Tickets[0].Sprint)
	assert.EqualValues(t, 1, h.search.Load())

	// Without a story points field the write has nothing to send.
	points := 2.0
	events = await(t, f, f.UpdateStoryPoints("ABC-1", &points))
	assert.Equal(t, []Kind{Failed}, kinds(events))
}

func TestWriteSignals(t *testing.T) {
	tests := []struct {
		name string
		code int
		want []Kind
	}{
		{name: "success", code: http.StatusNoContent, want: []Kind{Succeeded}},
		{name: "auth failure", code: http.StatusForbidden, want: []Kind{AuthRequired}},
		{name: "generic failure", code: http.StatusBadRequest, want: []Kind{Failed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET "+fieldPath, catalog)
			mux.HandleFunc("PUT /rest/api/3/issue/ABC-1", status(tt.code))
			mux.HandleFunc("POST /rest/api/3/issue/ABC-1/comment", status(tt.code))
			mux.HandleFunc("PUT /rest/api/3/issue/ABC-1/comment/7", status(tt.code))
			mux.HandleFunc("PUT /rest/api/3/issue/ABC-1/assignee", status(tt.code))
			mux.HandleFunc("POST /rest/api/3/issue/ABC-1/transitions", status(tt.code))
			mux.HandleFunc("POST /rest/api/3/user/search/query", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"accountId": "acc-1"}]`))
			})
			f, _ := newFacade(t, mux)

			points := 5.0
			sprint := 3
			due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
			ops := map[string]func() uuid.UUID{
				"description": func() uuid.UUID { return f.UpdateDescription("ABC-1", "text") },
				"add comment": func() uuid.UUID { return f.AddComment("ABC-1", "text") },
				"edit comment": func() uuid.UUID {
					return f.UpdateComment("ABC-1", "7", "text")
				},
				"story points": func() uuid.UUID { return f.UpdateStoryPoints("ABC-1", &points) },
				"assignee":     func() uuid.UUID { return f.UpdateAssignee("ABC-1", "ada") },
				"due date":     func() uuid.UUID { return f.UpdateDueDate("ABC-1", &due) },
				"sprint":       func() uuid.UUID { return f.UpdateSprint("ABC-1", &sprint) },
				"transition":   func() uuid.UUID { return f.TransitionIssue("ABC-1", "31") },
			}

			for name, start := range ops {
				events := await(t, f, start())
				assert.Equal(t, tt.want, kinds(events), name)
			}
		})
	}
}

func TestSkippedWriteOnlyFinishes(t *testing.T) {
	f, _ := newFacade(t, http.NotFoundHandler())

	assert.Empty(t, await(t, f, f.AddComment("ABC-1", "   ")))
	assert.Empty(t, await(t, f, f.TransitionIssue("", "31")))
}

func TestSucceededCarriesSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/issue/ABC-1/comment", status(http.StatusCreated))
	f, _ := newFacade(t, mux)

	events := await(t, f, f.AddComment("ABC-1", "hello"))
	require.Len(t, events, 1)
	assert.Equal(t, "Comment posted", events[0].Message)
}

func TestActiveSprintReportsEachBoardFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/agile/1.0/board", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": [{"id": 1}, {"id": 2}, {"id": 3}], "isLast": true}`))
	})
	mux.HandleFunc("GET /rest/agile/1.0/board/1/sprint", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": [{"id": 9, "name": "Nine", "startDate": "2024-01-01T00:00:00.000Z"}], "isLast": true}`))
	})
	mux.HandleFunc("GET /rest/agile/1.0/board/2/sprint", status(http.StatusInternalServerError))
	mux.HandleFunc("GET /rest/agile/1.0/board/3/sprint", status(http.StatusUnauthorized))
	f, _ := newFacade(t, mux)

	events := await(t, f, f.FetchMostRecentActiveSprint())
	assert.Equal(t, 1, count(events, Failed))
	assert.Equal(t, 1, count(events, AuthRequired))
	require.Equal(t, 1, count(events, ActiveSprintReady))

	last := events[len(events)-1]
	assert.Equal(t, ActiveSprintReady, last.Kind)
	require.NotNil(t, last.Sprint)
	assert.Equal(t, 9, last.Sprint.ID)
}

func TestActiveSprintAsksForCredentialsOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/agile/1.0/board", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": [{"id": 1}, {"id": 2}, {"id": 3}], "isLast": true}`))
	})
	mux.HandleFunc("GET /rest/agile/1.0/board/1/sprint", status(http.StatusUnauthorized))
	mux.HandleFunc("GET /rest/agile/1.0/board/2/sprint", status(http.StatusForbidden))
	mux.HandleFunc("GET /rest/agile/1.0/board/3/sprint", status(http.StatusUnauthorized))
	f, _ := newFacade(t, mux)

	events := await(t, f, f.FetchMostRecentActiveSprint())
	assert.Equal(t, []Kind{AuthRequired, ActiveSprintReady}, kinds(events))
	assert.Nil(t, events[1].Sprint)
}

func TestReadFailureStillDeliversResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/ABC-1/transitions", status(http.StatusBadGateway))
	f, _ := newFacade(t, mux)

	events := await(t, f, f.FetchTransitions("ABC-1"))
	require.Equal(t, []Kind{Failed, TransitionsReady}, kinds(events))
	assert.Equal(t, "GetTransitions", events[0].Operation)
	assert.Equal(t, "ABC-1", events[1].IssueKey)
	assert.Empty(t, events[1].Transitions)
}

func TestConfigureStartsNewGeneration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+fieldPath, catalog)
	mux.HandleFunc("POST "+searchPath, search)
	f, h := newFacade(t, mux)

	await(t, f, f.FetchMyTickets())
	require.NotEmpty(t, f.CurrentTickets())

	srv := httptest.NewServer(h.wrap(mux))
	defer srv.Close()
	require.NoError(t, f.Configure(config.JiraConfig{URL: srv.URL, Username: "other@example.com", Token: "token"}))

	assert.Equal(t, uint64(2), f.Generation())
	assert.Empty(t, f.CurrentTickets())

	events := await(t, f, f.FetchMyTickets())
	require.Len(t, events, 1)
	assert.Equal(t, uint64(2), events[0].Generation)
	assert.EqualValues(t, 2, h.fields.Load())
}

func TestConfigureRejectsMissingURL(t *testing.T) {
	f := New(context.Background(), Options{})
	defer f.Close()

	assert.Error(t, f.Configure(config.JiraConfig{Username: "me", Token: "token"}))
	assert.Zero(t, f.Generation())
}

func TestCloseClosesEvents(t *testing.T) {
	f := New(context.Background(), Options{})
	f.Close()
	f.Close()

	_, ok := <-f.Events()
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, f.FetchMyTickets())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "auth-required", AuthRequired.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
