package index

// Bitset is a compact visibility bit array over absolute record indices.
// It is the raw storage behind FilterIndex; rank/select live in the
// Fenwick tree, the bitset only answers point queries.
type Bitset struct {
	words []uint64
	size  int
}

// NewBitset creates a bitset capable of tracking up to size elements.
func NewBitset(size int) *Bitset {
	numWords := (size + 63) / 64
	return &Bitset{
		words: make([]uint64, numWords),
		size:  size,
	}
}

// Set sets or clears the bit at idx. Bounds are the caller's contract;
// FilterIndex validates before calling.
func (b *Bitset) Set(idx int, bit bool) {
	word := idx / 64
	mask := uint64(1) << (idx % 64)
	if bit {
		b.words[word] |= mask
	} else {
		b.words[word] &^= mask
	}
}

// Get returns the bit at idx. Out-of-range reads return false.
func (b *Bitset) Get(idx int) bool {
	if idx < 0 || idx >= b.size {
		return false
	}
	return b.words[idx/64]&(1<<(idx%64)) != 0
}

// Size returns the number of tracked elements.
func (b *Bitset) Size() int {
	return b.size
}

// Clone returns an independent copy. Used to hand background workers an
// immutable visibility snapshot.
func (b *Bitset) Clone() *Bitset {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return &Bitset{words: words, size: b.size}
}
