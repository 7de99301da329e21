// Package telemetry collects local widget metrics: search latency and
// outcomes, reconcile activity, and per-query stats. All data stays
// in-process; external consumers get read-only snapshots and never mutate
// core state.
package telemetry

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bigpick/bigpick/internal/scheduler"
)

// LatencyBucket represents a search-latency histogram bucket.
type LatencyBucket string

const (
	BucketSub1   LatencyBucket = "lt1ms"
	BucketSub10  LatencyBucket = "lt10ms"
	BucketSub50  LatencyBucket = "lt50ms"
	BucketSub250 LatencyBucket = "lt250ms"
	BucketSlow   LatencyBucket = "ge250ms"
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketSub1
	case d < 10*time.Millisecond:
		return BucketSub10
	case d < 50*time.Millisecond:
		return BucketSub50
	case d < 250*time.Millisecond:
		return BucketSub250
	default:
		return BucketSlow
	}
}

// QueryStats accumulates per-query observations.
type QueryStats struct {
	Count        int64
	LastOutcome  scheduler.Outcome
	LastLatency  time.Duration
	LastVisible  int
	LastObserved time.Time
}

// Snapshot is an immutable view of widget metrics.
type Snapshot struct {
	TotalSearches   int64                   `json:"total_searches"`
	Applied         int64                   `json:"applied"`
	Superseded      int64                   `json:"superseded"`
	Failed          int64                   `json:"failed"`
	Latency         map[LatencyBucket]int64 `json:"latency"`
	Reconciles      int64                   `json:"reconciles"`
	RowsBound       int64                   `json:"rows_bound"`
	LastRangeFirst  int                     `json:"last_range_first"`
	LastRangeLast   int                     `json:"last_range_last"`
	QueryCacheEvictions int64               `json:"query_cache_evictions"`
	Since           time.Time               `json:"since"`
}

// SupersededRate returns the fraction of searches whose results were
// discarded as stale.
func (s *Snapshot) SupersededRate() float64 {
	if s.TotalSearches == 0 {
		return 0
	}
	return float64(s.Superseded) / float64(s.TotalSearches)
}

// Metrics is a thread-safe metrics collector for one widget.
type Metrics struct {
	mu sync.RWMutex

	totalSearches int64
	applied       int64
	superseded    int64
	failed        int64
	latency       map[LatencyBucket]int64

	reconciles int64
	rowsBound  int64
	rangeFirst int
	rangeLast  int

	queries   *lru.Cache[string, *QueryStats]
	evictions int64

	since time.Time
}

// New creates a metrics collector. queryCacheSize bounds the per-query
// stats cache; eviction of the least-recently-seen query is the explicit,
// observable policy (see Snapshot.QueryCacheEvictions).
func New(queryCacheSize int) *Metrics {
	if queryCacheSize <= 0 {
		queryCacheSize = 256
	}
	m := &Metrics{
		latency: make(map[LatencyBucket]int64),
		since:   time.Now(),
	}
	m.queries, _ = lru.NewWithEvict[string, *QueryStats](queryCacheSize,
		func(string, *QueryStats) {
			m.evictions++
		})
	return m
}

// RecordSearch records one applied/superseded/failed search outcome.
func (m *Metrics) RecordSearch(query string, outcome scheduler.Outcome, latency time.Duration, visible int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalSearches++
	switch outcome {
	case scheduler.OutcomeApplied:
		m.applied++
		m.latency[LatencyToBucket(latency)]++
	case scheduler.OutcomeSuperseded:
		m.superseded++
	case scheduler.OutcomeFailed:
		m.failed++
	}

	stats, ok := m.queries.Get(query)
	if !ok {
		stats = &QueryStats{}
		m.queries.Add(query, stats)
	}
	stats.Count++
	stats.LastOutcome = outcome
	stats.LastLatency = latency
	stats.LastVisible = visible
	stats.LastObserved = time.Now()
}

// RecordReconcile records one reconcile pass and its rendered window.
func (m *Metrics) RecordReconcile(first, last, bound int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconciles++
	m.rowsBound += int64(bound)
	m.rangeFirst = first
	m.rangeLast = last
}

// Query returns accumulated stats for a query, if still cached.
func (m *Metrics) Query(query string) (QueryStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats, ok := m.queries.Get(query)
	if !ok {
		return QueryStats{}, false
	}
	return *stats, true
}

// Snapshot returns an immutable copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latency := make(map[LatencyBucket]int64, len(m.latency))
	for k, v := range m.latency {
		latency[k] = v
	}
	return Snapshot{
		TotalSearches:       m.totalSearches,
		Applied:             m.applied,
		Superseded:          m.superseded,
		Failed:              m.failed,
		Latency:             latency,
		Reconciles:          m.reconciles,
		RowsBound:           m.rowsBound,
		LastRangeFirst:      m.rangeFirst,
		LastRangeLast:       m.rangeLast,
		QueryCacheEvictions: m.evictions,
		Since:               m.since,
	}
}
