// Package index maintains the visibility of an ordered record collection
// under a filter predicate, answering rank and select queries in O(log N).
//
// The core structure is a Fenwick (binary indexed) tree over a visibility
// bitset: toggling one record's visibility and asking "how many visible
// records precede absolute index i" are both logarithmic, and "which
// absolute index is the k-th visible record" is a single descent of the
// tree. Visible order always equals absolute order; records are never
// reordered by relevance.
package index

import (
	"fmt"
	"math/bits"

	lerr "github.com/bigpick/bigpick/internal/errors"
)

// NotFound is the sentinel returned by NthVisible when k is out of range.
const NotFound = -1

// Predicate reports whether the record at absolute index i is visible.
type Predicate func(i int) bool

// FilterIndex translates between absolute record indices and positions
// among currently-visible records. All methods are O(log N) or better;
// only Rebuild is O(N).
//
// FilterIndex is not safe for concurrent mutation. The widget confines all
// writes to its single update sequence; background workers only ever see
// bitset snapshots (SnapshotVisible).
type FilterIndex struct {
	n       int
	maxSize int
	visible *Bitset
	tree    []int // 1-based Fenwick array over visibility bits
	total   int
}

// New builds a FilterIndex over n records, applying pred to every index.
// A nil pred marks every record visible. maxSize bounds n to keep index
// memory in check.
func New(n, maxSize int, pred Predicate) (*FilterIndex, error) {
	f := &FilterIndex{maxSize: maxSize}
	if err := f.Rebuild(n, pred); err != nil {
		return nil, err
	}
	return f, nil
}

// Rebuild replaces the entire index in O(N). Called when the host swaps
// the record collection wholesale.
func (f *FilterIndex) Rebuild(n int, pred Predicate) error {
	if n < 0 {
		return lerr.InvalidSize(fmt.Sprintf("dataset size %d is negative", n))
	}
	if f.maxSize > 0 && n > f.maxSize {
		return lerr.InvalidSize(
			fmt.Sprintf("dataset size %d exceeds configured maximum %d", n, f.maxSize))
	}

	f.n = n
	f.visible = NewBitset(n)
	f.tree = make([]int, n+1)
	f.total = 0

	for i := 0; i < n; i++ {
		if pred == nil || pred(i) {
			f.visible.Set(i, true)
			f.tree[i+1]++
			f.total++
		}
	}

	// O(N) Fenwick construction: fold each node into its parent once.
	for i := 1; i <= n; i++ {
		if j := i + (i & -i); j <= n {
			f.tree[j] += f.tree[i]
		}
	}
	return nil
}

// Len returns the total record count N.
func (f *FilterIndex) Len() int {
	return f.n
}

// TotalVisible returns the number of currently-visible records. O(1).
func (f *FilterIndex) TotalVisible() int {
	return f.total
}

// Visible reports whether the record at absolute index i is visible.
func (f *FilterIndex) Visible(i int) (bool, error) {
	if i < 0 || i >= f.n {
		return false, lerr.IndexOutOfRange(i, f.n)
	}
	return f.visible.Get(i), nil
}

// SetVisible sets the visibility bit for absolute index i. Setting an
// already-equal bit is a no-op. O(log N).
func (f *FilterIndex) SetVisible(i int, bit bool) error {
	if i < 0 || i >= f.n {
		return lerr.IndexOutOfRange(i, f.n)
	}
	if f.visible.Get(i) == bit {
		return nil
	}

	f.visible.Set(i, bit)
	delta := 1
	if !bit {
		delta = -1
	}
	f.total += delta
	for j := i + 1; j <= f.n; j += j & -j {
		f.tree[j] += delta
	}
	return nil
}

// RankVisible returns the count of visible records strictly before
// absolute index i. i == N is allowed and equals TotalVisible(). O(log N).
func (f *FilterIndex) RankVisible(i int) (int, error) {
	if i < 0 || i > f.n {
		return 0, lerr.IndexOutOfRange(i, f.n+1)
	}
	sum := 0
	for j := i; j > 0; j -= j & -j {
		sum += f.tree[j]
	}
	return sum, nil
}

// NthVisible returns the absolute index of the k-th visible record
// (0-based), or NotFound when k >= TotalVisible(). O(log N) via a single
// top-down descent of the Fenwick tree.
func (f *FilterIndex) NthVisible(k int) int {
	if k < 0 || k >= f.total {
		return NotFound
	}

	pos := 0
	rem := k + 1
	for step := highestPow2(f.n); step > 0; step >>= 1 {
		if next := pos + step; next <= f.n && f.tree[next] < rem {
			pos = next
			rem -= f.tree[pos]
		}
	}
	// pos is the largest 1-based prefix with fewer than k+1 visible
	// records, so the answer is the next position: 0-based index pos.
	return pos
}

// ApplyPredicateDiff retests only the given indices against pred and
// updates their visibility. O(len(changed) * log N). The caller decides
// when a bounded diff is possible; an unbounded predicate change goes
// through Rebuild instead.
func (f *FilterIndex) ApplyPredicateDiff(changed []int, pred Predicate) error {
	for _, i := range changed {
		if err := f.SetVisible(i, pred(i)); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotVisible returns an independent copy of the visibility bitset
// for handoff to background evaluation.
func (f *FilterIndex) SnapshotVisible() *Bitset {
	return f.visible.Clone()
}

// highestPow2 returns the largest power of two <= n, or 0 for n <= 0.
func highestPow2(n int) int {
	if n <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
