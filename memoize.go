package memocache

import (
	"context"
	"time"
)

// Func is a memoized operation produced by Memoize. It has the shape of the
// wrapped operation plus per-call options such as IgnoreCache.
type Func[T any] func(ctx context.Context, opts ...CallOption) (T, error)

// WrapOption configures a memoized wrapper at definition time.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	ttl          time.Duration
	hasTTL       bool
	invalidate   bool
	ignore       bool
	singleflight bool
}

// WithTTL sets the TTL written with each computed result. A zero or negative
// ttl writes entries that are already expired on the next read, so every call
// recomputes.
func WithTTL(ttl time.Duration) WrapOption {
	return func(c *wrapConfig) {
		c.ttl = ttl
		c.hasTTL = true
	}
}

// WithInvalidate removes the entry before every call, forcing recomputation
// regardless of the entry's expiry state. The fresh result is still stored.
func WithInvalidate() WrapOption {
	return func(c *wrapConfig) {
		c.invalidate = true
	}
}

// WithIgnoreCache skips the lookup on every call while still refreshing the
// entry with the fresh result. The per-call equivalent is IgnoreCache.
func WithIgnoreCache() WrapOption {
	return func(c *wrapConfig) {
		c.ignore = true
	}
}

// WithSingleflight shares one in-flight execution among concurrent callers
// missing on the same key. Off by default: without it, simultaneous misses
// each execute the operation and the last write wins. The first caller's
// context drives the shared execution.
func WithSingleflight() WrapOption {
	return func(c *wrapConfig) {
		c.singleflight = true
	}
}

// CallOption adjusts a single invocation of a memoized Func.
type CallOption func(*callConfig)

type callConfig struct {
	ignoreCache bool
}

// IgnoreCache bypasses the lookup for this call only, forcing execution.
// The fresh result still refreshes the entry.
func IgnoreCache() CallOption {
	return func(c *callConfig) {
		c.ignoreCache = true
	}
}

// Memoize binds fn to a fixed key in s and returns a function that consults
// the store before executing. The key is static: arguments are not part of
// it, so every invocation shares one cache slot.
//
// Each invocation runs in order: invalidate the entry when WithInvalidate is
// set; otherwise look the key up unless bypassed, returning a live cached
// value without executing fn; on a miss or bypass execute fn, store its
// result, and return it. A failure of fn propagates unchanged and nothing is
// cached.
//
// A cached value that does not assert to T is treated as a miss and
// overwritten; this happens when the same key was written through the
// type-erased store surface.
func Memoize[T any](s *Store, key string, fn func(context.Context) (T, error), opts ...WrapOption) Func[T] {
	var cfg wrapConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, callOpts ...CallOption) (T, error) {
		var zero T
		if fn == nil {
			return zero, ErrNilFunc
		}
		if key == "" {
			return zero, ErrInvalidKey
		}

		var cc callConfig
		for _, opt := range callOpts {
			opt(&cc)
		}

		if cfg.invalidate {
			s.Invalidate(key)
		} else if !cfg.ignore && !cc.ignoreCache {
			if v, ok := s.Get(key); ok {
				if typed, ok := v.(T); ok {
					return typed, nil
				}
				s.logger.Debug().Str("key", key).Msg("cached value has unexpected type, recomputing")
			}
		}

		if cfg.singleflight {
			return sharedComputeAndStore(ctx, s, key, fn, cfg.ttl, cfg.hasTTL)
		}
		return computeAndStore(ctx, s, key, fn, cfg.ttl, cfg.hasTTL)
	}
}

// GetOrSet returns the live value under key, or runs loader and stores its
// result. A ttl <= 0 stores with the store's default policy instead of an
// explicit TTL. Loader failures propagate unchanged and are never cached.
func GetOrSet[T any](ctx context.Context, s *Store, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, ErrNilFunc
	}
	if key == "" {
		return zero, ErrInvalidKey
	}

	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		s.logger.Debug().Str("key", key).Msg("cached value has unexpected type, recomputing")
	}

	return computeAndStore(ctx, s, key, loader, ttl, ttl > 0)
}

// GetOrSetSingleflight is GetOrSet with the miss path coalesced: concurrent
// misses on the same key share one loader execution. The first caller's
// context drives the shared call.
func GetOrSetSingleflight[T any](ctx context.Context, s *Store, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, ErrNilFunc
	}
	if key == "" {
		return zero, ErrInvalidKey
	}

	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		s.logger.Debug().Str("key", key).Msg("cached value has unexpected type, recomputing")
	}

	return sharedComputeAndStore(ctx, s, key, loader, ttl, ttl > 0)
}

// computeAndStore runs fn and writes its result under key. Failures
// propagate unchanged and nothing is written for them.
func computeAndStore[T any](ctx context.Context, s *Store, key string, fn func(context.Context) (T, error), ttl time.Duration, hasTTL bool) (T, error) {
	var zero T
	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	if hasTTL {
		err = s.SetWithTTL(key, v, ttl)
	} else {
		err = s.Set(key, v)
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

// sharedComputeAndStore coalesces computeAndStore through the store's
// singleflight group, keyed by the cache key. When wrappers of different
// result types share a key, a joiner that receives a foreign type falls back
// to an uncoalesced execution.
func sharedComputeAndStore[T any](ctx context.Context, s *Store, key string, fn func(context.Context) (T, error), ttl time.Duration, hasTTL bool) (T, error) {
	var zero T
	v, err, _ := s.sf.Do(key, func() (any, error) {
		res, err := computeAndStore(ctx, s, key, fn, ttl, hasTTL)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		s.logger.Debug().Str("key", key).Msg("coalesced result has unexpected type, recomputing")
		return computeAndStore(ctx, s, key, fn, ttl, hasTTL)
	}
	return typed, nil
}
