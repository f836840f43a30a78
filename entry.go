package memocache

import "time"

// Entry represents a single cached value with TTL metadata.
// A zero ExpiresAt means the entry never expires.
type Entry struct {
	// Key is the cache key.
	Key string

	// Value is the cached result, opaque to the store.
	Value any

	// CreatedAt is the store-clock timestamp when the entry was written.
	CreatedAt time.Time

	// ExpiresAt is the store-clock timestamp when the entry expires.
	// The zero value disables expiry for this entry.
	ExpiresAt time.Time

	// TTL is the duration the entry was written with (0 when absent).
	TTL time.Duration
}

// newEntry builds an entry stamped at now. When hasTTL is false the entry
// never expires; otherwise ExpiresAt = now + ttl, so a zero or negative ttl
// yields an entry that is already expired on the next read.
func newEntry(key string, value any, now time.Time, ttl time.Duration, hasTTL bool) Entry {
	e := Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if hasTTL {
		e.TTL = ttl
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

// IsExpiredAt reports whether the entry has expired as of now.
// Expiry fires exactly at CreatedAt+TTL: an entry written with a zero TTL is
// expired for any read at or after its creation instant.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(e.ExpiresAt)
}

// IsExpired checks expiry against the wall clock. Store reads use the store's
// injected clock instead; this helper serves callers inspecting a snapshot.
func (e *Entry) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}

// IsValid reports whether the entry is still live as of now.
// This is the inverse of IsExpiredAt and is provided for readability.
func (e *Entry) IsValid(now time.Time) bool {
	return !e.IsExpiredAt(now)
}

// Age returns the duration since the entry was created.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// TimeUntilExpiration returns the duration until the entry expires.
// Returns 0 if already expired. The second return is false when the entry
// never expires.
func (e *Entry) TimeUntilExpiration(now time.Time) (time.Duration, bool) {
	if e.ExpiresAt.IsZero() {
		return 0, false
	}
	remaining := e.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0, true
	}
	return remaining, true
}
