// Package listcore wires the filter index, virtualizer, node pool, and
// search scheduler into one selection-list core. It is framework-free:
// a host renderer supplies element handles and populates their content,
// a host event source feeds scroll/resize/key events, and the core keeps
// everything consistent over datasets of millions of records.
package listcore

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/internal/index"
	"github.com/bigpick/bigpick/internal/match"
	"github.com/bigpick/bigpick/internal/pool"
	"github.com/bigpick/bigpick/internal/scheduler"
	"github.com/bigpick/bigpick/internal/telemetry"
	"github.com/bigpick/bigpick/internal/viewport"
)

// Records re-exports the read-only record view the core consumes.
type Records = scheduler.Records

// RenderItem re-exports the per-row reconcile payload.
type RenderItem[E any] = viewport.RenderItem[E]

// Response re-exports the search response type.
type Response = scheduler.Response

// Align re-exports scroll alignment.
type Align = viewport.Align

const (
	AlignStart  = viewport.AlignStart
	AlignCenter = viewport.AlignCenter
	AlignEnd    = viewport.AlignEnd
)

// List is one selection-list widget core. All methods except the
// scheduler's background workers run on the host's single update
// sequence; List is not safe for concurrent use.
type List[E any] struct {
	cfg *config.Config
	log *slog.Logger

	records Records
	idx     *index.FilterIndex
	pool    *pool.Pool[E]
	virt    *viewport.Virtualizer[E]
	sched   *scheduler.Scheduler
	metrics *telemetry.Metrics

	cursor   int // absolute index, -1 when the list is empty
	selected map[int]bool
}

// New creates a list core from configuration. factory allocates one
// renderable element handle; the pool calls it a constant number of times
// regardless of dataset size.
func New[E any](cfg *config.Config, factory func() E) (*List[E], error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	idx, err := index.New(0, cfg.List.MaxDatasetSize, nil)
	if err != nil {
		return nil, err
	}

	p := pool.New(factory)
	virt, err := viewport.New(viewport.Config{
		ItemExtent:      cfg.List.ItemExtent,
		MinItemExtent:   cfg.List.MinItemExtent,
		Overscan:        cfg.List.Overscan,
		VariableExtents: cfg.List.VariableExtents,
	}, idx, p)
	if err != nil {
		return nil, err
	}

	matcher := match.ForKind(cfg.Search.Matcher, cfg.Search.FuzzyThreshold)
	sched := scheduler.New(scheduler.Config{
		Workers:  cfg.Search.Workers,
		Debounce: cfg.Search.DebounceWindow,
	}, idx, matcher)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New(cfg.Metrics.QueryCacheSize)
	}

	return &List[E]{
		cfg:      cfg,
		log:      slog.Default(),
		idx:      idx,
		pool:     p,
		virt:     virt,
		sched:    sched,
		metrics:  metrics,
		cursor:   -1,
		selected: make(map[int]bool),
	}, nil
}

// Start launches background search workers.
func (l *List[E]) Start(ctx context.Context) {
	l.sched.Start(ctx)
}

// Stop tears down background workers.
func (l *List[E]) Stop() {
	l.sched.Stop()
}

// SetRecords replaces the record collection wholesale: the filter index
// is rebuilt, measured extents and pool bindings are discarded, in-flight
// searches are superseded, and cursor/selection reset.
func (l *List[E]) SetRecords(r Records) error {
	n := 0
	if r != nil {
		n = r.Len()
	}
	if err := l.idx.Rebuild(n, nil); err != nil {
		return err
	}

	l.records = r
	l.sched.SetRecords(r)
	l.virt.Reset()
	l.selected = make(map[int]bool)
	l.cursor = -1
	if n > 0 {
		l.cursor = 0
	}
	return nil
}

// Total returns the full record count.
func (l *List[E]) Total() int {
	return l.idx.Len()
}

// TotalVisible returns the count of records matching the current filter.
func (l *List[E]) TotalVisible() int {
	return l.idx.TotalVisible()
}

// NthVisible maps a visible-order position to its absolute index, or -1
// when out of range.
func (l *List[E]) NthVisible(vis int) int {
	return l.idx.NthVisible(vis)
}

// RankVisible returns the number of visible records before abs.
func (l *List[E]) RankVisible(abs int) (int, error) {
	return l.idx.RankVisible(abs)
}

// Submit feeds a query to the search scheduler.
func (l *List[E]) Submit(query string) {
	l.sched.Submit(query)
}

// Responses returns the channel of search results to feed back into Apply.
func (l *List[E]) Responses() <-chan Response {
	return l.sched.Responses()
}

// Searching reports whether a query is pending.
func (l *List[E]) Searching() bool {
	return l.sched.CurrentState() == scheduler.StatePending
}

// Apply consumes one search response. Fresh results mutate the filter
// index, invalidate viewport layout, and re-home a cursor whose record
// was filtered out; stale results are discarded untouched.
func (l *List[E]) Apply(resp Response) (scheduler.Outcome, error) {
	outcome, err := l.sched.Apply(resp)
	if l.metrics != nil {
		l.metrics.RecordSearch(resp.Query, outcome, resp.Elapsed, l.idx.TotalVisible())
	}
	if err != nil || outcome != scheduler.OutcomeApplied {
		return outcome, err
	}

	l.virt.InvalidateLayout()
	l.rehomeCursor()
	return outcome, nil
}

// rehomeCursor snaps the cursor to the nearest visible record after a
// filter change hid it.
func (l *List[E]) rehomeCursor() {
	total := l.idx.TotalVisible()
	if total == 0 {
		l.cursor = -1
		return
	}
	if l.cursor >= 0 {
		if visible, err := l.idx.Visible(l.cursor); err == nil && visible {
			return
		}
	}

	vis := 0
	if l.cursor >= 0 {
		if rank, err := l.idx.RankVisible(l.cursor); err == nil {
			vis = rank
		}
	}
	if vis >= total {
		vis = total - 1
	}
	l.cursor = l.idx.NthVisible(vis)
}

// OnScroll records a scroll offset for the next reconcile.
func (l *List[E]) OnScroll(offset int) {
	l.virt.OnScroll(offset)
}

// OnResize records a container extent for the next reconcile.
func (l *List[E]) OnResize(extent int) error {
	return l.virt.OnResize(extent)
}

// NeedsReconcile reports whether state changed since the last reconcile.
func (l *List[E]) NeedsReconcile() bool {
	return l.virt.NeedsReconcile()
}

// ScrollOffset returns the current scroll offset.
func (l *List[E]) ScrollOffset() int {
	return l.virt.ScrollOffset()
}

// TotalScrollExtent returns the extent of the scrollable track.
func (l *List[E]) TotalScrollExtent() int {
	return l.virt.TotalScrollExtent()
}

// VisibleRange returns the window of visible-order positions that the
// next reconcile will render.
func (l *List[E]) VisibleRange() viewport.Range {
	return l.virt.VisibleRange()
}

// Measure records an observed row extent (variable-extent mode only).
func (l *List[E]) Measure(abs, extent int) error {
	return l.virt.Measure(abs, extent)
}

// Reconcile renders the current window through the node pool in one
// batched pass.
func (l *List[E]) Reconcile(render func(RenderItem[E])) error {
	bound := 0
	err := l.virt.Reconcile(func(it RenderItem[E]) {
		bound++
		render(it)
	})
	if err != nil {
		return err
	}
	if l.metrics != nil {
		r := l.virt.VisibleRange()
		l.metrics.RecordReconcile(r.First, r.Last, bound)
	}
	return nil
}

// Cursor returns the cursor's absolute index, or -1.
func (l *List[E]) Cursor() int {
	return l.cursor
}

// CursorVisIndex returns the cursor's visible-order position, or -1 when
// there is no cursor or it is filtered out.
func (l *List[E]) CursorVisIndex() int {
	if l.cursor < 0 {
		return -1
	}
	visible, err := l.idx.Visible(l.cursor)
	if err != nil || !visible {
		return -1
	}
	rank, err := l.idx.RankVisible(l.cursor)
	if err != nil {
		return -1
	}
	return rank
}

// MoveCursor moves the cursor by delta positions in visible order,
// clamping at the ends. Absolute order is stable under filtering, so
// keyboard navigation stays predictable.
func (l *List[E]) MoveCursor(delta int) {
	total := l.idx.TotalVisible()
	if total == 0 {
		return
	}

	vis := l.CursorVisIndex()
	if vis < 0 {
		l.rehomeCursor()
		vis = l.CursorVisIndex()
		if vis < 0 {
			return
		}
	}

	vis += delta
	if vis < 0 {
		vis = 0
	}
	if vis > total-1 {
		vis = total - 1
	}
	l.cursor = l.idx.NthVisible(vis)
}

// SetCursor places the cursor on an absolute index.
func (l *List[E]) SetCursor(abs int) error {
	if _, err := l.idx.Visible(abs); err != nil {
		return err
	}
	l.cursor = abs
	return nil
}

// ScrollToCursor scrolls so the cursor row satisfies align.
func (l *List[E]) ScrollToCursor(align Align) error {
	if l.cursor < 0 {
		return nil
	}
	return l.virt.ScrollToIndex(l.cursor, align)
}

// ToggleSelect flips selection of the cursor row. Selection is keyed by
// absolute index, so it survives filter changes.
func (l *List[E]) ToggleSelect() {
	if l.cursor < 0 {
		return
	}
	if l.selected[l.cursor] {
		delete(l.selected, l.cursor)
	} else {
		l.selected[l.cursor] = true
	}
}

// Selected returns the selected absolute indices in ascending order.
func (l *List[E]) Selected() []int {
	out := make([]int, 0, len(l.selected))
	for i := range l.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsSelected reports whether an absolute index is selected.
func (l *List[E]) IsSelected(abs int) bool {
	return l.selected[abs]
}

// Metrics returns the telemetry collector, or nil when disabled.
func (l *List[E]) Metrics() *telemetry.Metrics {
	return l.metrics
}

// Records returns the current record collection reference.
func (l *List[E]) Records() Records {
	return l.records
}
