package viewport

import (
	"sort"
)

// extentCache tracks observed row extents that differ from the fixed
// estimate. Keyed by absolute index so a measurement survives filter
// changes; a row's height does not depend on what matched. Invalidated
// wholesale on dataset replace.
type extentCache struct {
	estimate int
	measured map[int]int // absolute index -> observed extent
}

func newExtentCache(estimate int) *extentCache {
	return &extentCache{
		estimate: estimate,
		measured: make(map[int]int),
	}
}

func (c *extentCache) set(abs, extent int) bool {
	if prev, ok := c.measured[abs]; ok && prev == extent {
		return false
	}
	if extent == c.estimate {
		delete(c.measured, abs)
		return true
	}
	c.measured[abs] = extent
	return true
}

func (c *extentCache) get(abs int) int {
	if e, ok := c.measured[abs]; ok {
		return e
	}
	return c.estimate
}

func (c *extentCache) reset() {
	c.measured = make(map[int]int)
}

// deltaEntry records one measured visible row: its visible-order position
// and the running sum of (measured - estimate) up to and including it.
type deltaEntry struct {
	visIdx int
	cum    int
}

// layoutTable turns the extent cache into cumulative-offset arithmetic for
// the current filter state. offsetOf and rowAt are both logarithmic in the
// number of measured rows; unmeasured rows cost nothing. Rebuilt lazily
// whenever a measurement or the filter state changes.
type layoutTable struct {
	estimate int
	deltas   []deltaEntry
	total    int // cumulative delta over all measured visible rows
}

// buildLayout ranks every measured row that is currently visible and
// prefix-sums the extent deltas in visible order.
func buildLayout(cache *extentCache, idx Index) *layoutTable {
	t := &layoutTable{estimate: cache.estimate}
	if len(cache.measured) == 0 {
		return t
	}

	t.deltas = make([]deltaEntry, 0, len(cache.measured))
	for abs, extent := range cache.measured {
		visible, err := idx.Visible(abs)
		if err != nil || !visible {
			continue
		}
		rank, err := idx.RankVisible(abs)
		if err != nil {
			continue
		}
		t.deltas = append(t.deltas, deltaEntry{visIdx: rank, cum: extent - cache.estimate})
	}
	sort.Slice(t.deltas, func(i, j int) bool {
		return t.deltas[i].visIdx < t.deltas[j].visIdx
	})

	running := 0
	for i := range t.deltas {
		running += t.deltas[i].cum
		t.deltas[i].cum = running
	}
	t.total = running
	return t
}

// deltaBefore returns the cumulative extent delta of measured rows whose
// visible-order position is strictly before visIdx.
func (t *layoutTable) deltaBefore(visIdx int) int {
	lo := sort.Search(len(t.deltas), func(i int) bool {
		return t.deltas[i].visIdx >= visIdx
	})
	if lo == 0 {
		return 0
	}
	return t.deltas[lo-1].cum
}

// offsetOf returns the scroll offset where the row at visible-order
// position visIdx begins.
func (t *layoutTable) offsetOf(visIdx int) int {
	return visIdx*t.estimate + t.deltaBefore(visIdx)
}

// totalExtent returns the cumulative extent of all totalVisible rows.
func (t *layoutTable) totalExtent(totalVisible int) int {
	return totalVisible*t.estimate + t.total
}

// rowAt returns the visible-order position of the row whose span contains
// offset, clamped into [0, totalVisible).
func (t *layoutTable) rowAt(offset, totalVisible int) int {
	if totalVisible == 0 || offset <= 0 {
		return 0
	}
	// Largest k with offsetOf(k) <= offset. offsetOf is monotonic because
	// extents are positive.
	k := sort.Search(totalVisible, func(k int) bool {
		return t.offsetOf(k) > offset
	}) - 1
	if k < 0 {
		k = 0
	}
	if k >= totalVisible {
		k = totalVisible - 1
	}
	return k
}
