// Package tasks runs background operations for the interactive browser.
//
// Every submitted operation gets a Handle carrying a unique id and the
// operation's identity. Completions are delivered on a single channel in the
// order they finish. Two operations with the same key never run at once.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kudosx/kudosx/internal/logging"
)

// ErrBusy is returned by Submit when an operation with the same key is running.
var ErrBusy = errors.New("operation already in progress")

// Action names what an operation does.
type Action string

const (
	ActionInstall Action = "install"
	ActionRemove  Action = "remove"
	ActionRefresh Action = "refresh"
	ActionUsage   Action = "usage"
)

// Op identifies an operation.
type Op struct {
	Action Action
	Skill  string
	Scope  string
	Path   string
}

// Key is the serialization key. Operations on the same target path share a
// key regardless of action; operations without a path are keyed by action.
func (o Op) Key() string {
	if o.Path != "" {
		return "path:" + o.Path
	}
	return "action:" + string(o.Action)
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if o.Skill == "" {
		return string(o.Action)
	}
	return fmt.Sprintf("%s %s (%s)", o.Action, o.Skill, o.Scope)
}

// Handle refers to a submitted operation.
type Handle struct {
	ID string
	Op Op
}

// Result is the outcome of an operation.
type Result struct {
	Handle
	Value   any
	Err     error
	Elapsed time.Duration
}

// Func is the work of an operation.
type Func func(ctx context.Context) (any, error)

// Runner executes operations on background goroutines.
type Runner struct {
	logger  *slog.Logger
	results chan Result

	mu       sync.Mutex
	inflight map[string]Handle
	wg       sync.WaitGroup
}

// NewRunner creates a Runner whose completion channel buffers up to buffer results.
func NewRunner(logger *slog.Logger, buffer int) *Runner {
	return &Runner{
		logger:   logger,
		results:  make(chan Result, buffer),
		inflight: make(map[string]Handle),
	}
}

// Results returns the completion channel.
func (r *Runner) Results() <-chan Result {
	return r.results
}

// Submit starts fn in the background. It returns ErrBusy without starting
// anything when an operation with the same key is in flight.
func (r *Runner) Submit(ctx context.Context, op Op, fn Func) (Handle, error) {
	key := op.Key()

	r.mu.Lock()
	if running, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		return running, fmt.Errorf("%s: %w", running.Op, ErrBusy)
	}
	h := Handle{ID: uuid.NewString(), Op: op}
	r.inflight[key] = h
	r.wg.Add(1)
	r.mu.Unlock()

	logger := logging.WithTask(r.logger, h.ID, string(op.Action))
	if op.Skill != "" {
		logger = logging.WithSkill(logger, op.Skill)
	}
	logger.Debug("task started")

	go func() {
		defer r.wg.Done()

		start := time.Now()
		value, err := run(ctx, fn)
		res := Result{Handle: h, Value: value, Err: err, Elapsed: time.Since(start)}

		r.mu.Lock()
		delete(r.inflight, key)
		r.mu.Unlock()

		if err != nil {
			logger.Debug("task failed", "error", err)
		} else {
			logger.Debug("task finished", "elapsed", res.Elapsed)
		}
		r.results <- res
	}()

	return h, nil
}

// run calls fn, turning a panic into an error.
func run(ctx context.Context, fn Func) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return fn(ctx)
}

// Busy reports whether an operation with op's key is in flight.
func (r *Runner) Busy(op Op) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[op.Key()]
	return ok
}

// InFlight returns the running operations ordered by key.
func (r *Runner) InFlight() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.inflight))
	for k := range r.inflight {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Handle, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.inflight[k])
	}
	return out
}

// Wait blocks until every submitted operation has delivered its result.
// Results must be drained concurrently when more than the buffer are pending.
func (r *Runner) Wait() {
	r.wg.Wait()
}
