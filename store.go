package memocache

import (
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Clock supplies the current time to a store. It is substitutable so tests
// can drive expiry deterministically with a fixed or advancing fake.
type Clock func() time.Time

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock sets the time source used to stamp entries and evaluate expiry.
// Defaults to time.Now.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger the store emits operation events to.
// Defaults to a no-op logger so library use stays quiet.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithName sets the store name used in log fields and metric labels.
// Stores sharing a name share metric series.
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithDefaultTTL sets the TTL applied by Set. Zero or negative keeps the
// default behavior of entries that never expire.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.defaultTTL = ttl
	}
}

// WithEventHook registers a sink invoked synchronously with every store
// event, after the table lock is released. Hook implementations must be safe
// for concurrent use.
func WithEventHook(hook func(Event)) Option {
	return func(s *Store) {
		s.hook = hook
	}
}

// Store is a process-local keyed table of cached values with TTL expiration
// and explicit invalidation. Thread-safe for concurrent access; the table is
// guarded by a single coarse lock, with no per-key locking.
type Store struct {
	name       string
	id         ulid.ULID
	clock      Clock
	logger     zerolog.Logger
	defaultTTL time.Duration
	hook       func(Event)

	sf    singleflight.Group
	stats statCounters

	// mu protects entries. Events and stats are recorded outside the lock.
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty store. Without options it names itself "default",
// reads time.Now, logs nowhere, and writes entries that never expire.
func New(opts ...Option) *Store {
	s := &Store{
		name:    "default",
		id:      ulid.Make(),
		clock:   time.Now,
		logger:  zerolog.Nop(),
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().
		Str("component", "cache").
		Str("store", s.name).
		Str("store_id", s.id.String()).
		Logger()
	s.setGauge(0)
	return s
}

// Name returns the store name.
func (s *Store) Name() string {
	return s.name
}

// ID returns the store's process-unique instance id.
func (s *Store) ID() ulid.ULID {
	return s.id
}

// DefaultTTL returns the TTL applied by Set, 0 when entries never expire.
func (s *Store) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Set inserts or overwrites the entry for key with the store's default TTL.
// With no default configured the entry never expires. Overwriting is not an
// error; the previous entry is replaced whole.
func (s *Store) Set(key string, value any) error {
	if s.defaultTTL > 0 {
		return s.write(key, value, s.defaultTTL, true)
	}
	return s.write(key, value, 0, false)
}

// SetWithTTL inserts or overwrites the entry for key with an explicit TTL.
// A zero or negative ttl is accepted and produces an entry that is already
// expired on the next read.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) error {
	return s.write(key, value, ttl, true)
}

func (s *Store) write(key string, value any, ttl time.Duration, hasTTL bool) error {
	if key == "" {
		return ErrInvalidKey
	}

	now := s.clock()
	s.mu.Lock()
	s.entries[key] = newEntry(key, value, now, ttl, hasTTL)
	size := len(s.entries)
	s.mu.Unlock()

	s.setGauge(size)
	s.emit(EventSet, key, now)
	return nil
}

// Get returns the value stored under key. The second return is false on a
// miss: the key is absent, or its entry has expired. A miss is a normal
// outcome, never an error, including for the empty key.
func (s *Store) Get(key string) (any, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// GetEntry is Get returning a copy of the full entry for introspection.
func (s *Store) GetEntry(key string) (Entry, bool) {
	return s.lookup(key)
}

func (s *Store) lookup(key string) (Entry, bool) {
	now := s.clock()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	switch {
	case !ok:
		s.emit(EventMiss, key, now)
		return Entry{}, false
	case e.IsExpiredAt(now):
		s.purgeExpired(key, now)
		s.emit(EventExpired, key, now)
		return Entry{}, false
	}

	s.emit(EventHit, key, now)
	return e, true
}

// purgeExpired removes key only while its entry is still expired at now.
// A concurrent overwrite with a fresh entry is left in place.
func (s *Store) purgeExpired(key string, now time.Time) {
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur.IsExpiredAt(now) {
		delete(s.entries, key)
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.setGauge(size)
}

// Invalidate removes the entry for key regardless of its expiry state.
// Idempotent: removing an absent key is a no-op, not an error.
func (s *Store) Invalidate(key string) {
	now := s.clock()
	s.mu.Lock()
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()

	s.setGauge(size)
	s.emit(EventInvalidate, key, now)
}

// Clear removes every entry from the store.
func (s *Store) Clear() {
	now := s.clock()
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()

	s.setGauge(0)
	s.emit(EventClear, "", now)
}

// Len returns the number of live entries. Expired entries still held by the
// table are not counted.
func (s *Store) Len() int {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if !e.IsExpiredAt(now) {
			n++
		}
	}
	return n
}

// Keys returns the live keys, sorted.
func (s *Store) Keys() []string {
	now := s.clock()
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if !e.IsExpiredAt(now) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Entries returns copies of the live entries, sorted by key.
func (s *Store) Entries() []Entry {
	now := s.clock()
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsExpiredAt(now) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CleanupExpired removes every expired entry and returns the number removed.
// Lazy purge on read keeps the table tidy on its own; this is for periodic
// maintenance. No per-key events are emitted.
func (s *Store) CleanupExpired() int {
	now := s.clock()
	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if e.IsExpiredAt(now) {
			delete(s.entries, k)
			removed++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	s.setGauge(size)
	return removed
}

// Stats returns a snapshot of the store's operation counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	size := len(s.entries)
	s.mu.RUnlock()
	return s.stats.snapshot(size)
}

func (s *Store) setGauge(size int) {
	entriesGauge.WithLabelValues(s.name).Set(float64(size))
}
