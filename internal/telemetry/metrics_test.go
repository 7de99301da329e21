package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpick/bigpick/internal/scheduler"
)

func TestLatencyToBucket(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want LatencyBucket
	}{
		{500 * time.Microsecond, BucketSub1},
		{time.Millisecond, BucketSub10},
		{9 * time.Millisecond, BucketSub10},
		{40 * time.Millisecond, BucketSub50},
		{100 * time.Millisecond, BucketSub250},
		{time.Second, BucketSlow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LatencyToBucket(tt.d), tt.d.String())
	}
}

func TestRecordSearch_CountsOutcomes(t *testing.T) {
	m := New(16)

	m.RecordSearch("ban", scheduler.OutcomeApplied, 2*time.Millisecond, 30)
	m.RecordSearch("ban", scheduler.OutcomeSuperseded, 0, 30)
	m.RecordSearch("bana", scheduler.OutcomeApplied, 700*time.Microsecond, 12)
	m.RecordSearch("xyz", scheduler.OutcomeFailed, 0, 0)

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.TotalSearches)
	assert.Equal(t, int64(2), snap.Applied)
	assert.Equal(t, int64(1), snap.Superseded)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, int64(1), snap.Latency[BucketSub10])
	assert.Equal(t, int64(1), snap.Latency[BucketSub1])
	assert.InDelta(t, 0.25, snap.SupersededRate(), 1e-9)
}

func TestRecordSearch_PerQueryStats(t *testing.T) {
	m := New(16)
	m.RecordSearch("ban", scheduler.OutcomeApplied, time.Millisecond, 42)
	m.RecordSearch("ban", scheduler.OutcomeApplied, 2*time.Millisecond, 17)

	stats, ok := m.Query("ban")
	require.True(t, ok)
	assert.Equal(t, int64(2), stats.Count)
	assert.Equal(t, 17, stats.LastVisible)

	_, ok = m.Query("never seen")
	assert.False(t, ok)
}

func TestQueryCache_EvictionIsObservable(t *testing.T) {
	// Given: a cache bounded to 4 queries
	m := New(4)

	// When: 10 distinct queries are recorded
	for i := 0; i < 10; i++ {
		m.RecordSearch(fmt.Sprintf("q%d", i), scheduler.OutcomeApplied, time.Millisecond, i)
	}

	// Then: the oldest are gone and evictions are counted
	snap := m.Snapshot()
	assert.Equal(t, int64(6), snap.QueryCacheEvictions)
	_, ok := m.Query("q0")
	assert.False(t, ok)
	_, ok = m.Query("q9")
	assert.True(t, ok)
}

func TestRecordReconcile(t *testing.T) {
	m := New(16)
	m.RecordReconcile(100, 122, 23)
	m.RecordReconcile(105, 127, 5)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Reconciles)
	assert.Equal(t, int64(28), snap.RowsBound)
	assert.Equal(t, 105, snap.LastRangeFirst)
	assert.Equal(t, 127, snap.LastRangeLast)
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := New(16)
	m.RecordSearch("a", scheduler.OutcomeApplied, time.Millisecond, 1)

	snap := m.Snapshot()
	snap.Latency[BucketSlow] = 999

	assert.Equal(t, int64(0), m.Snapshot().Latency[BucketSlow])
}
