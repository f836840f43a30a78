// Package memocache provides in-process memoization of expensive operations
// with TTL expiration and explicit invalidation.
//
// The core type is [Store], a process-local keyed table of cached values.
// Entries carry an optional time-to-live; an expired entry is treated as
// absent and purged lazily on access. Key features:
//   - Opaque values: the store holds any result type; callers interpret on read
//   - Optional per-entry TTL (zero or past TTL means expired on the next read)
//   - Explicit, idempotent invalidation regardless of expiry state
//   - Injectable clock and logger for deterministic tests and quiet libraries
//   - One structured event per operation (set, hit, miss, expired, invalidate)
//
// Two usage styles are supported. Wrapping mode binds a fixed key to one
// operation at definition time via [Memoize], returning a function with the
// same shape plus per-call options such as [IgnoreCache]. Direct mode lets the
// caller build a dynamic key (see [GenerateKey]) and drive [Store.Get] and
// [Store.Set] itself, or use the [GetOrSet] convenience.
//
// Concurrent misses for the same key each execute the underlying operation
// and the last write wins. Callers that want a single in-flight execution
// shared by all waiters opt in with [WithSingleflight] or
// [GetOrSetSingleflight]; coalescing is never enabled silently.
//
// The store is process-local only: no cross-process sharing, no persistence,
// and no size-bounded eviction.
package memocache
