// Package viewport implements the virtualizer: it owns scroll and viewport
// state, maps scroll offsets to the bounded window of visible-order
// positions that must be rendered, and drives the node pool so only a
// constant number of elements exist regardless of dataset size.
package viewport

import (
	"fmt"

	lerr "github.com/bigpick/bigpick/internal/errors"
	"github.com/bigpick/bigpick/internal/pool"
)

// Index is the read side of the filter index the virtualizer translates
// through. *index.FilterIndex satisfies it.
type Index interface {
	Len() int
	TotalVisible() int
	Visible(i int) (bool, error)
	RankVisible(i int) (int, error)
	NthVisible(k int) int
}

// Align controls where ScrollToIndex places the target row.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// ParseAlign converts a string to an Align.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "start", "":
		return AlignStart, nil
	case "center":
		return AlignCenter, nil
	case "end":
		return AlignEnd, nil
	default:
		return 0, lerr.New(lerr.ErrCodeInvalidAlign,
			fmt.Sprintf("unknown alignment %q (use: start, center, end)", s), nil)
	}
}

// Range is an inclusive window of visible-order positions.
type Range struct {
	First int
	Last  int
}

// Count returns the number of positions in the range.
func (r Range) Count() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Empty reports whether the range contains no positions.
func (r Range) Empty() bool {
	return r.Count() == 0
}

// Contains reports whether the visible-order position is in the range.
func (r Range) Contains(visIdx int) bool {
	return visIdx >= r.First && visIdx <= r.Last
}

var emptyRange = Range{First: 0, Last: -1}

// Config configures a Virtualizer.
type Config struct {
	// ItemExtent is the fixed per-row extent estimate. Required.
	ItemExtent int

	// MinItemExtent bounds how small a measured row can be: it sizes the
	// pool and floors incoming measurements. Defaults to ItemExtent.
	MinItemExtent int

	// Overscan is the number of extra positions rendered beyond each edge
	// of the strict viewport.
	Overscan int

	// VariableExtents enables the measured-extent cache.
	VariableExtents bool
}

// RenderItem is one bound row handed to the caller during Reconcile.
type RenderItem[E any] struct {
	// Slot is the pool slot carrying the element to populate. Dirty()
	// means the slot was rebound and must be refreshed; callers should
	// also refresh when AbsIndex differs from what they last rendered
	// into the element, since filter changes shift which record a
	// visible-order position refers to.
	Slot *pool.Slot[E]

	// AbsIndex is the record's absolute index in the full collection.
	AbsIndex int

	// VisIndex is the position among currently-visible records.
	VisIndex int

	// Offset is where the row begins within the total scroll extent.
	Offset int

	// Extent is the row's current (measured or estimated) extent.
	Extent int
}

// Virtualizer computes which visible-order positions intersect the
// viewport and binds pool slots to them. All methods run on the widget's
// single update sequence; nothing here is safe for concurrent use.
//
// Scroll and resize events only mutate state and set a dirty flag;
// rendering work happens in Reconcile, so any number of events between
// two frames collapses into one reconciliation with the last state
// winning.
type Virtualizer[E any] struct {
	cfg  Config
	idx  Index
	pool *pool.Pool[E]

	scrollOffset    int
	containerExtent int

	cache       *extentCache
	layoutCache *layoutTable

	prevRange Range
	dirty     bool
}

// New creates a virtualizer over the given index and pool.
func New[E any](cfg Config, idx Index, p *pool.Pool[E]) (*Virtualizer[E], error) {
	if cfg.ItemExtent <= 0 {
		return nil, lerr.InvalidSize("item extent must be positive")
	}
	if cfg.MinItemExtent <= 0 {
		cfg.MinItemExtent = cfg.ItemExtent
	}
	if cfg.Overscan < 0 {
		return nil, lerr.InvalidSize("overscan must not be negative")
	}
	return &Virtualizer[E]{
		cfg:       cfg,
		idx:       idx,
		pool:      p,
		cache:     newExtentCache(cfg.ItemExtent),
		prevRange: emptyRange,
		dirty:     true,
	}, nil
}

// OnScroll records a new scroll offset. Negative offsets clamp to zero;
// offsets beyond the scrollable extent clamp at use time, when the final
// pre-frame value is known.
func (v *Virtualizer[E]) OnScroll(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset != v.scrollOffset {
		v.scrollOffset = offset
		v.dirty = true
	}
}

// OnResize records a new container extent and grows the pool if the
// viewport now needs more slots than it has.
func (v *Virtualizer[E]) OnResize(containerExtent int) error {
	if containerExtent < 0 {
		containerExtent = 0
	}
	if containerExtent == v.containerExtent {
		return nil
	}
	v.containerExtent = containerExtent
	v.dirty = true

	needed := v.requiredSlots()
	if needed > v.pool.Cap() {
		if err := v.pool.Configure(needed); err != nil {
			return err
		}
		v.prevRange = emptyRange
	}
	return nil
}

// requiredSlots sizes the pool for the worst case: a viewport whose edges
// straddle row boundaries intersects ceil(extent/minItemExtent)+1 rows,
// plus overscan on each side.
func (v *Virtualizer[E]) requiredSlots() int {
	rows := (v.containerExtent+v.cfg.MinItemExtent-1)/v.cfg.MinItemExtent + 1
	n := rows + 2*v.cfg.Overscan
	if n < 1 {
		n = 1
	}
	return n
}

// ScrollOffset returns the current scroll offset.
func (v *Virtualizer[E]) ScrollOffset() int {
	return v.scrollOffset
}

// NeedsReconcile reports whether state changed since the last Reconcile.
func (v *Virtualizer[E]) NeedsReconcile() bool {
	return v.dirty
}

// InvalidateLayout must be called after the filter index changes (a search
// result was applied or rows were toggled): visible-order positions and
// cumulative extents are stale.
func (v *Virtualizer[E]) InvalidateLayout() {
	v.layoutCache = nil
	v.dirty = true
}

// Reset discards all measured extents and pool bindings. Called on dataset
// replace so nothing references out-of-range indices.
func (v *Virtualizer[E]) Reset() {
	v.cache.reset()
	v.layoutCache = nil
	v.pool.ReleaseAll()
	v.prevRange = emptyRange
	v.scrollOffset = 0
	v.dirty = true
}

func (v *Virtualizer[E]) layout() *layoutTable {
	if v.layoutCache == nil {
		v.layoutCache = buildLayout(v.cache, v.idx)
	}
	return v.layoutCache
}

// TotalScrollExtent returns the cumulative extent of all visible rows,
// used to size the scrollable track.
func (v *Virtualizer[E]) TotalScrollExtent() int {
	return v.layout().totalExtent(v.idx.TotalVisible())
}

// maxScrollOffset is the largest useful scroll offset.
func (v *Virtualizer[E]) maxScrollOffset() int {
	max := v.TotalScrollExtent() - v.containerExtent
	if max < 0 {
		return 0
	}
	return max
}

// VisibleRange returns the inclusive window of visible-order positions to
// render: every position whose extent intersects the viewport, expanded by
// overscan on each side. The window keeps its full size at the edges by
// redistributing clamped overscan to the other side, and never exceeds
// [0, TotalVisible()).
func (v *Virtualizer[E]) VisibleRange() Range {
	total := v.idx.TotalVisible()
	if total == 0 || v.containerExtent <= 0 {
		return emptyRange
	}

	offset := v.scrollOffset
	if max := v.maxScrollOffset(); offset > max {
		offset = max
	}

	layout := v.layout()
	first := layout.rowAt(offset, total)
	last := layout.rowAt(offset+v.containerExtent-1, total)

	first -= v.cfg.Overscan
	last += v.cfg.Overscan
	if first < 0 {
		last += -first
		first = 0
	}
	if last > total-1 {
		first -= last - (total - 1)
		last = total - 1
		if first < 0 {
			first = 0
		}
	}
	return Range{First: first, Last: last}
}

// ScrollToIndex scrolls so the record at the given absolute index is
// positioned per align. The record must be in range; a hidden record
// scrolls to where it would appear among visible rows.
func (v *Virtualizer[E]) ScrollToIndex(abs int, align Align) error {
	rank, err := v.idx.RankVisible(abs)
	if err != nil {
		return err
	}

	layout := v.layout()
	rowStart := layout.offsetOf(rank)
	extent := v.cache.get(abs)

	var target int
	switch align {
	case AlignStart:
		target = rowStart
	case AlignCenter:
		target = rowStart + extent/2 - v.containerExtent/2
	case AlignEnd:
		target = rowStart + extent - v.containerExtent
	default:
		return lerr.New(lerr.ErrCodeInvalidAlign,
			fmt.Sprintf("unknown alignment %d", align), nil)
	}

	if target < 0 {
		target = 0
	}
	if max := v.maxScrollOffset(); target > max {
		target = max
	}
	if target != v.scrollOffset {
		v.scrollOffset = target
		v.dirty = true
	}
	return nil
}

// Measure records an observed row extent and keeps the current anchor row
// pinned on screen while cumulative extents change beneath it. The anchor
// is the topmost visible-order position at or spanning the scroll offset;
// when several rows are measured in one frame, each measurement re-anchors
// against the same rule, ties going to the smaller index.
func (v *Virtualizer[E]) Measure(abs, extent int) error {
	if !v.cfg.VariableExtents {
		return nil
	}
	if abs < 0 || abs >= v.idx.Len() {
		return lerr.IndexOutOfRange(abs, v.idx.Len())
	}
	if extent <= 0 {
		return lerr.InvalidSize("measured extent must be positive")
	}
	// The pool is sized assuming no row is smaller than MinItemExtent, so
	// measurements below the floor clamp up to it.
	if extent < v.cfg.MinItemExtent {
		extent = v.cfg.MinItemExtent
	}

	total := v.idx.TotalVisible()
	anchor := v.layout().rowAt(v.scrollOffset, total)
	anchorBefore := v.layout().offsetOf(anchor)

	if !v.cache.set(abs, extent) {
		return nil
	}
	v.layoutCache = nil
	v.dirty = true

	if total > 0 {
		anchorAfter := v.layout().offsetOf(anchor)
		v.scrollOffset += anchorAfter - anchorBefore
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	}
	return nil
}

// Reconcile maps the current visible range through the filter index,
// binds a pool slot for every position, releases positions that fell out
// of range, and hands each bound row to render in one batched pass.
func (v *Virtualizer[E]) Reconcile(render func(RenderItem[E])) error {
	r := v.VisibleRange()

	// Release first so slots freed here are available for rebinding.
	if !v.prevRange.Empty() {
		for p := v.prevRange.First; p <= v.prevRange.Last; p++ {
			if !r.Contains(p) {
				v.pool.Release(p)
			}
		}
	}

	layout := v.layout()
	for p := r.First; p <= r.Last; p++ {
		abs := v.idx.NthVisible(p)
		if abs < 0 {
			return lerr.InternalError(
				fmt.Sprintf("visible position %d vanished during reconcile", p), nil)
		}
		slot, err := v.pool.Bind(p)
		if err != nil {
			return err
		}
		render(RenderItem[E]{
			Slot:     slot,
			AbsIndex: abs,
			VisIndex: p,
			Offset:   layout.offsetOf(p),
			Extent:   v.cache.get(abs),
		})
	}

	v.prevRange = r
	v.dirty = false
	return nil
}
