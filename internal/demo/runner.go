// Package demo drives synthetic workloads through a cache store so the CLI
// can show memoization behavior on realistic call patterns.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Worker pool bounds for a run.
const (
	// DefaultWorkers is the default call parallelism.
	DefaultWorkers = 4

	// MinWorkers is the minimum allowed parallelism.
	MinWorkers = 1

	// MaxWorkers is the maximum allowed parallelism.
	MaxWorkers = 64
)

// Common runner errors.
var (
	ErrInvalidWorkers = errors.New("worker count must be between 1 and 64")
	ErrNilTask        = errors.New("task function cannot be nil")
	ErrNoCalls        = errors.New("calls slice cannot be empty")
)

// Call identifies one unit of work in a run.
type Call struct {
	// Sequence is the call's position in the run, 0-based.
	Sequence int

	// Key is the cache key the call targets.
	Key string

	// Bypass forces this call to skip its cache lookup.
	Bypass bool
}

// Outcome records how one call finished.
type Outcome[T any] struct {
	Call     Call
	Value    T
	Err      error
	Duration time.Duration
}

// TaskFunc executes a single call.
type TaskFunc[T any] func(ctx context.Context, call Call) (T, error)

// ProgressFunc is an optional callback invoked after each completed call.
// It receives progress information for UI updates or logging.
type ProgressFunc func(done, total int)

// Runner executes calls through a task function with bounded parallelism.
// Task failures land in the outcomes and do not cancel the run. A Runner
// tracks progress for one run at a time.
type Runner[T any] struct {
	// workers bounds how many calls run concurrently.
	workers int

	// onProgress is an optional callback for progress updates.
	onProgress ProgressFunc

	// mu protects the progress counter.
	mu   sync.Mutex
	done int
}

// NewRunner creates a runner with the given parallelism.
func NewRunner[T any](workers int) (*Runner[T], error) {
	if workers < MinWorkers || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}

	return &Runner[T]{workers: workers}, nil
}

// NewRunnerWithDefaults creates a runner with the default parallelism.
func NewRunnerWithDefaults[T any]() *Runner[T] {
	return &Runner[T]{workers: DefaultWorkers}
}

// WithProgress sets a progress callback for the runner.
func (r *Runner[T]) WithProgress(fn ProgressFunc) *Runner[T] {
	r.onProgress = fn
	return r
}

// Workers returns the configured parallelism.
func (r *Runner[T]) Workers() int {
	return r.workers
}

// Run executes every call and returns one outcome per call, index-aligned
// with calls. The returned error reports setup problems or context
// cancellation, never task failures.
func (r *Runner[T]) Run(ctx context.Context, calls []Call, task TaskFunc[T]) ([]Outcome[T], error) {
	if len(calls) == 0 {
		return nil, ErrNoCalls
	}

	if task == nil {
		return nil, ErrNilTask
	}

	r.mu.Lock()
	r.done = 0
	r.mu.Unlock()

	outcomes := make([]Outcome[T], len(calls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, call := range calls {
		g.Go(func() error {
			// Calls dispatched after cancellation record the context
			// error instead of executing.
			if err := gCtx.Err(); err != nil {
				outcomes[i] = Outcome[T]{Call: call, Err: err}
				return nil
			}

			start := time.Now()
			value, err := task(gCtx, call)
			outcomes[i] = Outcome[T]{
				Call:     call,
				Value:    value,
				Err:      err,
				Duration: time.Since(start),
			}

			r.step(len(calls))
			return nil
		})
	}

	// Task errors are recorded per outcome, so Wait only ever observes nil.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// step advances the progress counter and notifies with the lock released.
func (r *Runner[T]) step(total int) {
	r.mu.Lock()
	r.done++
	done := r.done
	r.mu.Unlock()

	if r.onProgress != nil {
		r.onProgress(done, total)
	}
}
