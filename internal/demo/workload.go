package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rshade/memocache"
)

// checksumLen is how much of the key digest a Result carries.
const checksumLen = 12

// Common workload errors.
var (
	ErrNilStore = errors.New("store cannot be nil")

	// ErrSimulatedFailure is returned by computations selected for
	// failure injection.
	ErrSimulatedFailure = errors.New("simulated backend failure")
)

// Config shapes a synthetic workload.
type Config struct {
	// Tasks is the total number of memoized calls to issue.
	Tasks int

	// Workers bounds how many calls run in parallel.
	Workers int

	// Keys is the number of distinct hot keys the calls are spread over.
	Keys int

	// FailureRate is the fraction of computations that fail, 0 to 1.
	FailureRate float64

	// Seed makes key assignment and failure injection reproducible.
	Seed uint64

	// TTL applies to computed results. Zero stores with the store's
	// default policy.
	TTL time.Duration

	// Singleflight shares one computation among concurrent misses for
	// the same key.
	Singleflight bool

	// BypassEvery forces every Nth call to skip its lookup. Zero
	// disables bypassing.
	BypassEvery int

	// Latency delays each computation to imitate a slow backend.
	Latency time.Duration
}

func (c Config) validate() error {
	if c.Tasks <= 0 {
		return fmt.Errorf("tasks must be positive, got %d", c.Tasks)
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.Keys <= 0 {
		return fmt.Errorf("keys must be positive, got %d", c.Keys)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1, got %g", c.FailureRate)
	}
	if c.BypassEvery < 0 {
		return fmt.Errorf("bypass interval cannot be negative, got %d", c.BypassEvery)
	}
	return nil
}

// Result is the value produced by one simulated computation.
type Result struct {
	Key        string
	Checksum   string
	ComputedAt time.Time
}

// Workload drives memoized computations through a store the way a busy
// caller would: many concurrent calls spread over a few hot keys, with
// failures injected at a configurable rate. Two workloads with the same
// seed issue the same sequence of keys.
type Workload struct {
	store *memocache.Store
	cfg   Config

	// funcs holds one memoized function per hot key.
	funcs map[string]memocache.Func[Result]

	// computes counts actual executions, as opposed to cache answers.
	computes atomic.Uint64

	onProgress ProgressFunc

	// mu protects the seeded generator.
	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a workload over store. The store is shared: entries written by
// earlier runs stay visible to later ones.
func New(store *memocache.Store, cfg Config) (*Workload, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	w := &Workload{
		store: store,
		cfg:   cfg,
		funcs: make(map[string]memocache.Func[Result], cfg.Keys),
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}

	var opts []memocache.WrapOption
	if cfg.TTL > 0 {
		opts = append(opts, memocache.WithTTL(cfg.TTL))
	}
	if cfg.Singleflight {
		opts = append(opts, memocache.WithSingleflight())
	}

	for i := range cfg.Keys {
		key := demoKey(i)
		w.funcs[key] = memocache.Memoize(store, key, w.compute(key), opts...)
	}

	return w, nil
}

// WithProgress sets a progress callback for the workload's runs.
func (w *Workload) WithProgress(fn ProgressFunc) *Workload {
	w.onProgress = fn
	return w
}

// Store returns the store the workload runs against.
func (w *Workload) Store() *memocache.Store {
	return w.store
}

// Calls lays out a run: each call draws its key from the seeded generator.
// Every invocation continues the stream, so successive runs cover fresh
// sequences while staying reproducible end to end.
func (w *Workload) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()

	calls := make([]Call, w.cfg.Tasks)
	for i := range calls {
		calls[i] = Call{
			Sequence: i,
			Key:      demoKey(w.rng.IntN(w.cfg.Keys)),
			Bypass:   w.cfg.BypassEvery > 0 && i > 0 && i%w.cfg.BypassEvery == 0,
		}
	}
	return calls
}

// Task returns the task function that dispatches calls to their per-key
// memoized functions.
func (w *Workload) Task() TaskFunc[Result] {
	return func(ctx context.Context, call Call) (Result, error) {
		fn, ok := w.funcs[call.Key]
		if !ok {
			return Result{}, fmt.Errorf("no memoized function for key %q", call.Key)
		}

		if call.Bypass {
			return fn(ctx, memocache.IgnoreCache())
		}
		return fn(ctx)
	}
}

// Computes reports how many computations have actually executed across all
// runs of this workload.
func (w *Workload) Computes() uint64 {
	return w.computes.Load()
}

// Run executes one full pass of the workload and aggregates a report.
func (w *Workload) Run(ctx context.Context) (*Report, error) {
	runner, err := NewRunner[Result](w.cfg.Workers)
	if err != nil {
		return nil, err
	}
	if w.onProgress != nil {
		runner = runner.WithProgress(w.onProgress)
	}

	before := w.store.Stats()
	computesBefore := w.computes.Load()

	start := time.Now()
	outcomes, err := runner.Run(ctx, w.Calls(), w.Task())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	return buildReport(
		w.store.Name(),
		outcomes,
		w.computes.Load()-computesBefore,
		statsDelta(before, w.store.Stats()),
		elapsed,
	), nil
}

// compute returns the simulated backend call for key.
func (w *Workload) compute(key string) func(context.Context) (Result, error) {
	return func(ctx context.Context) (Result, error) {
		w.computes.Add(1)

		if w.cfg.Latency > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(w.cfg.Latency):
			}
		}

		if w.failNext() {
			return Result{}, fmt.Errorf("%w: %s", ErrSimulatedFailure, key)
		}

		return Result{
			Key:        key,
			Checksum:   memocache.HashKey(key)[:checksumLen],
			ComputedAt: time.Now(),
		}, nil
	}
}

// failNext draws one failure decision from the seeded generator.
func (w *Workload) failNext() bool {
	if w.cfg.FailureRate <= 0 {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng.Float64() < w.cfg.FailureRate
}

func demoKey(i int) string {
	return fmt.Sprintf("demo:key:%03d", i)
}
