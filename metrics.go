package memocache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // collectors are registered once per process
var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memocache_store_events_total",
		Help: "Total number of store operations by kind.",
	}, []string{"store", "op"})

	entriesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "memocache_store_entries",
		Help: "Number of entries currently held by the store, expired included.",
	}, []string{"store"})
)

// Stats is a point-in-time snapshot of a store's operation counters.
type Stats struct {
	// Hits counts lookups that returned a live entry.
	Hits uint64

	// Misses counts lookups for keys with no entry at all.
	Misses uint64

	// Expired counts lookups that found only an expired entry.
	Expired uint64

	// Sets counts inserts and overwrites.
	Sets uint64

	// Invalidations counts explicit removals, present or not.
	Invalidations uint64

	// Size is the number of entries held when the snapshot was taken,
	// expired entries included.
	Size int
}

// Lookups returns the total number of reads the snapshot covers.
func (st Stats) Lookups() uint64 {
	return st.Hits + st.Misses + st.Expired
}

// HitRatio returns Hits over all lookups, or 0 when there were none.
// An expired read counts as a miss for ratio purposes.
func (st Stats) HitRatio() float64 {
	total := st.Lookups()
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}

// statCounters accumulates per-store counters without taking the table lock.
type statCounters struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	expired       atomic.Uint64
	sets          atomic.Uint64
	invalidations atomic.Uint64
}

func (c *statCounters) count(kind EventKind) {
	switch kind {
	case EventHit:
		c.hits.Add(1)
	case EventMiss:
		c.misses.Add(1)
	case EventExpired:
		c.expired.Add(1)
	case EventSet:
		c.sets.Add(1)
	case EventInvalidate:
		c.invalidations.Add(1)
	case EventClear:
		// Clears are visible through Size, not a counter.
	}
}

func (c *statCounters) snapshot(size int) Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Expired:       c.expired.Load(),
		Sets:          c.sets.Load(),
		Invalidations: c.invalidations.Load(),
		Size:          size,
	}
}
