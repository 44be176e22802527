// Package desk is the asynchronous front of the Jira client. Each operation
// starts in the background and reports its outcome as a sequence of events
// on a single channel, ending with a Finished event.
package desk

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/danielolaszy/jiradesk/internal/config"
	"github.com/danielolaszy/jiradesk/internal/jira"
	"github.com/danielolaszy/jiradesk/internal/logging"
	"github.com/danielolaszy/jiradesk/pkg/models"
)

// ErrNotConfigured is reported by operations started before Configure.
var ErrNotConfigured = errors.New("jira connection is not configured")

// Options tune a Facade.
type Options struct {
	// Buffer is the capacity of the event channel.
	Buffer int
}

// Facade runs client operations in the background and publishes their
// results. It is safe for concurrent use.
type Facade struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	wg     conc.WaitGroup

	mu      sync.Mutex
	client  *jira.Client
	gen     uint64
	tickets []models.Ticket
	closed  bool
}

// New creates an unconfigured facade. Operations run until ctx is done or
// Close is called.
func New(ctx context.Context, opts Options) *Facade {
	buffer := opts.Buffer
	if buffer < 0 {
		buffer = 0
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Facade{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, buffer),
	}
}

// Configure switches to a new instance or new credentials. Field metadata
// is discovered again by the new client, and operations already in flight
// keep running under the previous generation.
func (f *Facade) Configure(cfg config.JiraConfig) error {
	client, err := jira.NewClient(cfg)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.client = client
	f.gen++
	f.tickets = nil

	logging.Info("jira connection configured",
		"base_url", cfg.BaseURL(),
		"username", cfg.Username,
		"generation", f.gen)
	return nil
}

// Events returns the channel all operations report on. It is closed by Close.
func (f *Facade) Events() <-chan Event {
	return f.events
}

// Generation returns the current configuration generation; zero means
// unconfigured.
func (f *Facade) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// CurrentTickets returns the last ticket list delivered under the current
// configuration.
func (f *Facade) CurrentTickets() []models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Ticket(nil), f.tickets...)
}

// Close abandons running operations, waits for them to return and closes
// the event channel.
func (f *Facade) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
	close(f.events)
}

// operation is the state of one running facade call.
type operation struct {
	f      *Facade
	id     uuid.UUID
	gen    uint64
	client *jira.Client

	// authReported is set once AuthRequired was emitted.
	authReported bool
}

// start runs fn in the background and returns its operation id. Nothing is
// started once the facade is closed; uuid.Nil is returned then.
func (f *Facade) start(name string, fn func(ctx context.Context, op *operation)) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return uuid.Nil
	}

	op := &operation{
		f:      f,
		id:     uuid.New(),
		gen:    f.gen,
		client: f.client,
	}

	f.wg.Go(func() {
		defer op.emit(Event{Kind: Finished})

		logging.Debug("operation started", "operation", name, "op_id", op.id, "generation", op.gen)
		if op.client == nil {
			op.emit(Event{Kind: Failed, Operation: name, Err: ErrNotConfigured, Message: ErrNotConfigured.Error()})
			return
		}
		fn(f.ctx, op)
	})
	return op.id
}

// emit delivers ev unless the facade is shutting down.
func (op *operation) emit(ev Event) {
	ev.OpID = op.id
	ev.Generation = op.gen

	select {
	case op.f.events <- ev:
	case <-op.f.ctx.Done():
		logging.Debug("event dropped", "kind", ev.Kind, "op_id", op.id)
	}
}

// fail emits one Failed event per generic error combined in err. Rejected
// credentials are reported by a single AuthRequired event per operation.
func (op *operation) fail(err error) {
	for _, e := range multierr.Errors(err) {
		if jira.IsAuth(e) {
			logging.Warn("jira authentication failed", "op_id", op.id, "error", e)
			if !op.authReported {
				op.authReported = true
				op.emit(Event{Kind: AuthRequired, Err: e, Message: e.Error()})
			}
			continue
		}

		name := ""
		var opErr *jira.OperationError
		if errors.As(e, &opErr) {
			name = opErr.Operation.Name
		}
		logging.Error("jira operation failed", "op_id", op.id, "operation", name, "error", e)
		op.emit(Event{Kind: Failed, Operation: name, Err: e, Message: e.Error()})
	}
}

// fieldIDs resolves the custom field ids. A generic failure is reported and
// the operation carries on with whatever ids are known; an authentication
// failure is reported and ok is false.
func (op *operation) fieldIDs(ctx context.Context) (ids jira.FieldIDs, ok bool) {
	ids, err := op.client.Fields().EnsureLoaded(ctx)
	if err != nil {
		op.fail(err)
		if jira.IsAuth(err) {
			return ids, false
		}
	}
	return ids, true
}

// written reports the outcome of a write. Skipped writes report nothing.
func (op *operation) written(err error, summary string) {
	switch {
	case errors.Is(err, jira.ErrSkipped):
		logging.Debug("write skipped", "op_id", op.id, "summary", summary)
	case err != nil:
		op.fail(err)
	default:
		logging.Info("write applied", "summary", summary, "op_id", op.id)
		op.emit(Event{Kind: Succeeded, Message: summary})
	}
}

// keepTickets stores tickets as the current list if op still belongs to the
// current configuration.
func (f *Facade) keepTickets(op *operation, tickets []models.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if op.gen == f.gen {
		f.tickets = tickets
	}
}
