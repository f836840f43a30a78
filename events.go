package memocache

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventKind identifies the store operation that produced an event.
type EventKind string

// Event kinds emitted by the store.
const (
	EventSet        EventKind = "set"
	EventHit        EventKind = "hit"
	EventMiss       EventKind = "miss"
	EventExpired    EventKind = "expired"
	EventInvalidate EventKind = "invalidate"
	EventClear      EventKind = "clear"
)

// Event is one structured record of a store operation. Every operation emits
// exactly one event to the store's logger, its event hook, and the package
// metrics.
type Event struct {
	// ID uniquely identifies the event within the process.
	ID ulid.ULID

	// Store is the name of the store that emitted the event.
	Store string

	// Kind is the operation that was performed.
	Kind EventKind

	// Key is the cache key the operation touched (empty for clear).
	Key string

	// At is the store-clock timestamp of the operation.
	At time.Time
}

// emit records one event for an operation. It runs outside the table lock, so
// hook implementations may call back into the store.
func (s *Store) emit(kind EventKind, key string, at time.Time) {
	ev := Event{
		ID:    ulid.Make(),
		Store: s.name,
		Kind:  kind,
		Key:   key,
		At:    at,
	}

	s.stats.count(kind)
	eventsTotal.WithLabelValues(s.name, string(kind)).Inc()

	s.logger.Debug().
		Str("op", string(kind)).
		Str("key", key).
		Time("event_at", at).
		Stringer("event_id", ev.ID).
		Msg("cache " + string(kind))

	if s.hook != nil {
		s.hook(ev)
	}
}
