// Package pool owns a small fixed number of renderable element handles and
// binds them to visible-order positions. The pool never grows with the
// dataset: scrolling through a million rows reuses the same handful of
// elements, which keeps per-frame allocation flat and preserves element
// identity (focus, in-progress input) for rows that stay on screen.
package pool

import (
	lerr "github.com/bigpick/bigpick/internal/errors"
)

const unbound = -1

// Slot is one recyclable element holder. A slot moves between three
// states: free (never bound), bound (pinned to a visible-order position),
// and released (still carrying its last binding, eligible for eviction).
type Slot[E any] struct {
	// Element is the host-owned renderable handle. Allocated once by the
	// pool factory and reused for the life of the pool.
	Element E

	index    int
	pinned   bool
	dirty    bool
	lastUsed uint64
}

// BoundIndex returns the visible-order position this slot carries, or -1.
func (s *Slot[E]) BoundIndex() int {
	return s.index
}

// Dirty reports whether the slot was rebound to a new position and its
// content must be refreshed by the host renderer.
func (s *Slot[E]) Dirty() bool {
	return s.dirty
}

// MarkClean clears the dirty flag after the host refreshed the content.
func (s *Slot[E]) MarkClean() {
	s.dirty = false
}

// Pool is a fixed-capacity recyclable element pool. It is not safe for
// concurrent use; all mutation happens inside the widget's reconcile pass.
type Pool[E any] struct {
	factory func() E
	slots   []*Slot[E]
	byIndex map[int]*Slot[E]
	tick    uint64
}

// New creates an unconfigured pool. factory allocates one element handle;
// it runs exactly Cap() times, at Configure.
func New[E any](factory func() E) *Pool[E] {
	return &Pool[E]{
		factory: factory,
		byIndex: make(map[int]*Slot[E]),
	}
}

// Configure sets the pool capacity and allocates the slots. Reconfiguring
// discards all existing bindings. maxSlots is chosen by the virtualizer
// from the viewport extent, minimum row extent, and overscan; it must be
// positive.
func (p *Pool[E]) Configure(maxSlots int) error {
	if maxSlots <= 0 {
		return lerr.InvalidSize("pool capacity must be positive")
	}
	p.slots = make([]*Slot[E], maxSlots)
	for i := range p.slots {
		p.slots[i] = &Slot[E]{Element: p.factory(), index: unbound}
	}
	p.byIndex = make(map[int]*Slot[E], maxSlots)
	p.tick = 0
	return nil
}

// Cap returns the configured capacity.
func (p *Pool[E]) Cap() int {
	return len(p.slots)
}

// BoundCount returns the number of currently pinned slots.
func (p *Pool[E]) BoundCount() int {
	n := 0
	for _, s := range p.slots {
		if s.pinned {
			n++
		}
	}
	return n
}

// Bind returns the slot for the given visible-order position.
//
// A slot still carrying this position (pinned or released) is returned
// as-is, element identity intact and not dirty. Otherwise the
// least-recently-used evictable slot is rebound and marked dirty for a
// content refresh. Bind fails with a pool-exhausted error when every slot
// is pinned to another position.
func (p *Pool[E]) Bind(visIdx int) (*Slot[E], error) {
	p.tick++

	if s, ok := p.byIndex[visIdx]; ok {
		s.pinned = true
		s.lastUsed = p.tick
		return s, nil
	}

	victim := p.evictable()
	if victim == nil {
		return nil, lerr.PoolExhausted(len(p.slots))
	}

	if victim.index != unbound {
		delete(p.byIndex, victim.index)
	}
	victim.index = visIdx
	victim.pinned = true
	victim.dirty = true
	victim.lastUsed = p.tick
	p.byIndex[visIdx] = victim
	return victim, nil
}

// Release marks the slot bound to visIdx eligible for eviction. The
// element and its binding survive until another position needs the slot,
// so a bind of the same position shortly after reclaims identical content.
func (p *Pool[E]) Release(visIdx int) {
	if s, ok := p.byIndex[visIdx]; ok {
		s.pinned = false
	}
}

// ReleaseAll unpins every slot and forgets all bindings. Called on dataset
// replace so no slot references an out-of-range position.
func (p *Pool[E]) ReleaseAll() {
	for _, s := range p.slots {
		s.pinned = false
		s.index = unbound
		s.dirty = false
	}
	p.byIndex = make(map[int]*Slot[E], len(p.slots))
}

// ForEachBound calls fn for each pinned slot, in slot order. The single
// iteration lets the caller batch content and position updates in one
// pass instead of interleaving reads and writes.
func (p *Pool[E]) ForEachBound(fn func(visIdx int, slot *Slot[E])) {
	for _, s := range p.slots {
		if s.pinned {
			fn(s.index, s)
		}
	}
}

// evictable returns the least-recently-used non-pinned slot, or nil.
func (p *Pool[E]) evictable() *Slot[E] {
	var victim *Slot[E]
	for _, s := range p.slots {
		if s.pinned {
			continue
		}
		if victim == nil || s.lastUsed < victim.lastUsed {
			victim = s
		}
	}
	return victim
}
