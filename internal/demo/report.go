package demo

import (
	"sort"
	"time"

	"github.com/rshade/memocache"
)

// Report aggregates one workload run.
type Report struct {
	// Store is the name of the store the run executed against.
	Store string

	// Calls is how many memoized calls the run issued.
	Calls int

	// Failures is how many calls returned an error.
	Failures int

	// Computes is how many calls actually executed the computation
	// instead of being answered from cache.
	Computes uint64

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration

	// AvgCall and Slowest summarize per-call latency.
	AvgCall time.Duration
	Slowest time.Duration

	// KeyCounts maps each key to the number of calls that targeted it.
	KeyCounts map[string]int

	// Stats is the store counter delta attributable to this run.
	Stats memocache.Stats
}

// CacheSavings is the fraction of calls answered without executing the
// computation.
func (r *Report) CacheSavings() float64 {
	if r.Calls == 0 {
		return 0
	}
	saved := 1 - float64(r.Computes)/float64(r.Calls)
	if saved < 0 {
		return 0
	}
	return saved
}

// FailureRatio is the fraction of calls that returned an error.
func (r *Report) FailureRatio() float64 {
	if r.Calls == 0 {
		return 0
	}
	return float64(r.Failures) / float64(r.Calls)
}

// HotKeys returns the run's keys ordered by call count, busiest first and
// ties broken by name for deterministic output.
func (r *Report) HotKeys() []string {
	keys := make([]string, 0, len(r.KeyCounts))
	for key := range r.KeyCounts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if r.KeyCounts[keys[i]] != r.KeyCounts[keys[j]] {
			return r.KeyCounts[keys[i]] > r.KeyCounts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func buildReport(store string, outcomes []Outcome[Result], computes uint64, stats memocache.Stats, elapsed time.Duration) *Report {
	rep := &Report{
		Store:     store,
		Calls:     len(outcomes),
		Computes:  computes,
		Elapsed:   elapsed,
		KeyCounts: make(map[string]int),
		Stats:     stats,
	}

	var total time.Duration
	for _, o := range outcomes {
		rep.KeyCounts[o.Call.Key]++
		total += o.Duration
		if o.Err != nil {
			rep.Failures++
		}
		if o.Duration > rep.Slowest {
			rep.Slowest = o.Duration
		}
	}
	if rep.Calls > 0 {
		rep.AvgCall = total / time.Duration(rep.Calls)
	}

	return rep
}

// statsDelta isolates the counter movement between two snapshots. Size is a
// level, not a counter, so the later snapshot's value is kept as is.
func statsDelta(before, after memocache.Stats) memocache.Stats {
	return memocache.Stats{
		Hits:          after.Hits - before.Hits,
		Misses:        after.Misses - before.Misses,
		Expired:       after.Expired - before.Expired,
		Sets:          after.Sets - before.Sets,
		Invalidations: after.Invalidations - before.Invalidations,
		Size:          after.Size,
	}
}
