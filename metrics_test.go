package memocache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMetrics(t *testing.T) {
	// The store name isolates this test's label set from the other tests
	// sharing the process-wide collectors.
	clk := newFakeClock(testEpoch)
	store := New(WithClock(clk.Now), WithName("metrics-probe"))

	require.NoError(t, store.Set("a", 1))
	require.NoError(t, store.SetWithTTL("b", 2, time.Second))
	store.Get("a")
	store.Get("a")
	store.Get("missing")
	clk.Advance(2 * time.Second)
	store.Get("b")
	store.Invalidate("a")

	sample := func(op string) float64 {
		return testutil.ToFloat64(eventsTotal.WithLabelValues("metrics-probe", op))
	}

	assert.InDelta(t, 2, sample("set"), 0.0001)
	assert.InDelta(t, 2, sample("hit"), 0.0001)
	assert.InDelta(t, 1, sample("miss"), 0.0001)
	assert.InDelta(t, 1, sample("expired"), 0.0001)
	assert.InDelta(t, 1, sample("invalidate"), 0.0001)

	gauge := testutil.ToFloat64(entriesGauge.WithLabelValues("metrics-probe"))
	assert.InDelta(t, 0, gauge, 0.0001)
}

func TestEntriesGaugeTracksSize(t *testing.T) {
	store := New(WithName("gauge-probe"))

	require.NoError(t, store.Set("a", 1))
	require.NoError(t, store.Set("b", 2))
	assert.InDelta(t, 2, testutil.ToFloat64(entriesGauge.WithLabelValues("gauge-probe")), 0.0001)

	store.Clear()
	assert.InDelta(t, 0, testutil.ToFloat64(entriesGauge.WithLabelValues("gauge-probe")), 0.0001)
}
