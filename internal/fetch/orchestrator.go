// Package fetch coordinates list requests for a screen so that only the
// response to the most recently dispatched query becomes visible.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/client"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
)

// Status is the orchestrator's visible state.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// GenericFailure is shown when a failure carries no usable message.
const GenericFailure = "failed to fetch data"

// Snapshot is what a screen renders. Data holds the last successful payload
// and is kept while a newer request is loading.
type Snapshot[T any] struct {
	Status  Status
	Seq     uint64
	Params  query.Params
	Data    T
	Err     error
	Message string
}

// Func performs the request for one serialized query.
type Func[T any] func(ctx context.Context, params query.Params) (T, error)

// Orchestrator runs list requests for one screen. Runs may overlap; a result
// is applied only if no later run was dispatched in the meantime.
type Orchestrator[T any] struct {
	schema   query.Schema
	logger   *slog.Logger
	onChange func(Snapshot[T])

	// notifyMu serializes transitions with their callbacks so observers see
	// them in order. It is always taken before mu.
	notifyMu sync.Mutex
	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	snap     Snapshot[T]
}

// Option configures an Orchestrator.
type Option[T any] func(*Orchestrator[T])

// WithLogger sets the logger used for discarded and failed requests.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(o *Orchestrator[T]) { o.logger = l }
}

// WithOnChange registers a callback invoked after every visible transition.
// The callback must not call Run.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(o *Orchestrator[T]) { o.onChange = fn }
}

// New creates an idle orchestrator for a screen.
func New[T any](schema query.Schema, opts ...Option[T]) *Orchestrator[T] {
	o := &Orchestrator[T]{schema: schema, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns the currently visible state.
func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Run dispatches fetch for st and blocks until it returns. The returned bool
// reports whether the result was applied; it is false when a later Run was
// dispatched first, in which case the result is dropped. Dispatching a run
// cancels the context of the run it supersedes.
func (o *Orchestrator[T]) Run(ctx context.Context, st query.State, fetch Func[T]) (Snapshot[T], bool) {
	params := query.Serialize(o.schema, st)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.notifyMu.Lock()
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.seq++
	seq := o.seq
	o.cancel = cancel
	o.snap.Status = Loading
	o.snap.Seq = seq
	o.snap.Params = params
	o.snap.Err = nil
	o.snap.Message = ""
	loading := o.snap
	o.mu.Unlock()
	o.notify(loading)
	o.notifyMu.Unlock()

	data, err := fetch(runCtx, params)

	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.mu.Lock()
	if seq != o.seq {
		current := o.snap
		o.mu.Unlock()
		o.logger.Debug("discarding superseded response", "screen", o.schema.Name, "seq", seq, "current", current.Seq)
		return current, false
	}
	o.cancel = nil
	if err != nil {
		o.snap.Status = Failure
		o.snap.Err = err
		o.snap.Message = FailureMessage(err)
	} else {
		o.snap.Status = Success
		o.snap.Data = data
	}
	done := o.snap
	o.mu.Unlock()

	if err != nil {
		o.logger.Warn("list request failed", "screen", o.schema.Name, "seq", seq, "error", err)
	}
	o.notify(done)
	return done, true
}

func (o *Orchestrator[T]) notify(s Snapshot[T]) {
	if o.onChange != nil {
		o.onChange(s)
	}
}

// FailureMessage derives the human-readable message for a failed request:
// the API's own message when it sent one, else the transport error, else
// GenericFailure.
func FailureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericFailure
	}
	var tErr *client.TransportError
	if errors.As(err, &tErr) {
		return tErr.Error()
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return GenericFailure
}
