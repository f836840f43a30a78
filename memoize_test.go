package memocache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFunc[T any](calls *atomic.Int64, result T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		calls.Add(1)
		return result, nil
	}
}

func TestMemoizeCachesResult(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "x", countingFunc(&calls, "result"))

	v, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "result", v)
	assert.Equal(t, int64(1), calls.Load())

	v, err = fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "result", v)
	assert.Equal(t, int64(1), calls.Load(), "second call must be served from cache")
}

func TestMemoizeInvalidateEveryCall(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "x", countingFunc(&calls, 9), WithInvalidate())

	for i := range 3 {
		v, err := fn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 9, v)
		assert.Equal(t, int64(i+1), calls.Load())
	}

	// The fresh result is still stored after each call.
	v, ok := store.Get("x")
	require.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestMemoizeTTLExpiry(t *testing.T) {
	clk := newFakeClock(testEpoch)
	store := New(WithClock(clk.Now))
	var calls atomic.Int64
	fn := Memoize(store, "y", countingFunc(&calls, 1), WithTTL(2*time.Second))

	_, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	clk.Advance(3 * time.Second)

	_, err = fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "expired entry must trigger recomputation")
}

func TestMemoizeIgnoreCachePerCall(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "x", countingFunc(&calls, "v"))

	_, err := fn(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), calls.Load())

	// Bypass forces execution but still refreshes the entry.
	_, err = fn(context.Background(), IgnoreCache())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())

	_, err = fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "refreshed entry must serve the next call")
}

func TestMemoizeIgnoreCacheEveryCall(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "x", countingFunc(&calls, "v"), WithIgnoreCache())

	for range 3 {
		_, err := fn(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), calls.Load())

	_, ok := store.Get("x")
	assert.True(t, ok, "results are written back even when lookups are skipped")
}

func TestMemoizeErrorNotCached(t *testing.T) {
	store := New()
	boom := errors.New("backend down")
	var calls atomic.Int64
	healthy := false
	fn := Memoize(store, "x", func(context.Context) (string, error) {
		calls.Add(1)
		if !healthy {
			return "", boom
		}
		return "ok", nil
	})

	_, err := fn(context.Background())
	assert.ErrorIs(t, err, boom)

	_, ok := store.Get("x")
	assert.False(t, ok, "failed outcomes must not be cached")

	healthy = true
	v, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemoizeNilFunc(t *testing.T) {
	store := New()
	fn := Memoize[int](store, "x", nil)

	_, err := fn(context.Background())
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestMemoizeEmptyKey(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "", countingFunc(&calls, 1))

	_, err := fn(context.Background())
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Zero(t, calls.Load(), "the operation must not run for an unusable key")
}

func TestMemoizeTypeMismatchRecomputes(t *testing.T) {
	store := New()
	var calls atomic.Int64
	fn := Memoize(store, "x", countingFunc(&calls, 42))

	// The slot was written through the type-erased surface with another type.
	require.NoError(t, store.Set("x", "not an int"))

	v, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int64(1), calls.Load())

	raw, ok := store.Get("x")
	require.True(t, ok)
	assert.Equal(t, 42, raw, "recomputation must overwrite the foreign value")
}

func TestMemoizeConcurrentMissesBothExecute(t *testing.T) {
	store := New()
	var calls atomic.Int64
	var entered sync.WaitGroup
	entered.Add(2)
	release := make(chan struct{})

	fn := Memoize(store, "x", func(context.Context) (int, error) {
		calls.Add(1)
		entered.Done()
		<-release
		return 1, nil
	})

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fn(context.Background())
			assert.NoError(t, err)
		}()
	}

	// Both callers miss and enter the operation; last write wins.
	entered.Wait()
	close(release)
	wg.Wait()

	assert.Equal(t, int64(2), calls.Load())
}

func TestMemoizeSingleflightCoalesces(t *testing.T) {
	store := New()
	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})

	fn := Memoize(store, "x", func(context.Context) (int, error) {
		calls.Add(1)
		close(started)
		<-release
		return 42, nil
	}, WithSingleflight())

	results := make(chan int, 5)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := fn(context.Background())
		assert.NoError(t, err)
		results <- v
	}()

	<-started
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fn(context.Background())
			assert.NoError(t, err)
			results <- v
		}()
	}

	// Give the joiners time to reach the in-flight call before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	assert.Equal(t, int64(1), calls.Load(), "concurrent misses must share one execution")
	for v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestGetOrSet(t *testing.T) {
	clk := newFakeClock(testEpoch)
	store := New(WithClock(clk.Now))
	var calls atomic.Int64

	v, err := GetOrSet(context.Background(), store, "dyn", time.Minute, countingFunc(&calls, "loaded"))
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, int64(1), calls.Load())

	v, err = GetOrSet(context.Background(), store, "dyn", time.Minute, countingFunc(&calls, "loaded"))
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, int64(1), calls.Load())

	t.Run("TTLHonored", func(t *testing.T) {
		clk.Advance(2 * time.Minute)
		_, err := GetOrSet(context.Background(), store, "dyn", time.Minute, countingFunc(&calls, "loaded"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("ErrorPropagatesUncached", func(t *testing.T) {
		boom := errors.New("load failed")
		_, err := GetOrSet(context.Background(), store, "bad", 0, func(context.Context) (string, error) {
			return "", boom
		})
		assert.ErrorIs(t, err, boom)
		_, ok := store.Get("bad")
		assert.False(t, ok)
	})

	t.Run("NilLoader", func(t *testing.T) {
		_, err := GetOrSet[string](context.Background(), store, "dyn", 0, nil)
		assert.ErrorIs(t, err, ErrNilFunc)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, err := GetOrSet(context.Background(), store, "", 0, countingFunc(&calls, "x"))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestGetOrSetDefaultPolicy(t *testing.T) {
	clk := newFakeClock(testEpoch)
	store := New(WithClock(clk.Now), WithDefaultTTL(time.Minute))
	var calls atomic.Int64

	// ttl <= 0 defers to the store's default policy.
	_, err := GetOrSet(context.Background(), store, "k", 0, countingFunc(&calls, 1))
	require.NoError(t, err)

	e, ok := store.GetEntry("k")
	require.True(t, ok)
	assert.Equal(t, time.Minute, e.TTL)
}

func TestGetOrSetSingleflight(t *testing.T) {
	store := New()
	var calls atomic.Int64

	v, err := GetOrSetSingleflight(context.Background(), store, "dyn", time.Minute, countingFunc(&calls, 7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = GetOrSetSingleflight(context.Background(), store, "dyn", time.Minute, countingFunc(&calls, 7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, int64(1), calls.Load())

	t.Run("Coalesces", func(t *testing.T) {
		var loads atomic.Int64
		started := make(chan struct{})
		release := make(chan struct{})
		loader := func(context.Context) (int, error) {
			loads.Add(1)
			close(started)
			<-release
			return 9, nil
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := GetOrSetSingleflight(context.Background(), store, "shared", 0, loader)
			assert.NoError(t, err)
		}()
		<-started

		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := GetOrSetSingleflight(context.Background(), store, "shared", 0, loader)
				assert.NoError(t, err)
			}()
		}
		time.Sleep(100 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int64(1), loads.Load())
	})
}
