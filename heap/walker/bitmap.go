package walker

import "github.com/joshuapare/heapkit/internal/format"

const bitsPerUint64 = 64

// Bitmap provides O(1) visited tracking for block pointers. Each bit covers
// one alignment unit, which is enough since block pointers are aligned.
type Bitmap struct {
	bits []uint64
	size uint32 // max offset in bytes
}

// NewBitmap creates a bitmap able to track every pointer below arenaSize.
func NewBitmap(arenaSize uint32) *Bitmap {
	numBits := (arenaSize + format.Alignment - 1) / format.Alignment
	numWords := (numBits + bitsPerUint64 - 1) / bitsPerUint64
	return &Bitmap{
		bits: make([]uint64, numWords),
		size: arenaSize,
	}
}

// Set marks ptr as visited. Out-of-range pointers are ignored.
func (b *Bitmap) Set(ptr uint32) {
	word, bit, ok := b.index(ptr)
	if !ok {
		return
	}
	b.bits[word] |= 1 << bit
}

// IsSet reports whether ptr was visited. Out-of-range pointers report false.
func (b *Bitmap) IsSet(ptr uint32) bool {
	word, bit, ok := b.index(ptr)
	if !ok {
		return false
	}
	return b.bits[word]&(1<<bit) != 0
}

// TestAndSet marks ptr and reports whether it was already marked.
func (b *Bitmap) TestAndSet(ptr uint32) bool {
	word, bit, ok := b.index(ptr)
	if !ok {
		return false
	}
	seen := b.bits[word]&(1<<bit) != 0
	b.bits[word] |= 1 << bit
	return seen
}

// Clear resets all bits.
func (b *Bitmap) Clear() {
	clear(b.bits)
}

// Size returns the arena size the bitmap was created for.
func (b *Bitmap) Size() uint32 { return b.size }

func (b *Bitmap) index(ptr uint32) (word int, bit uint32, ok bool) {
	idx := ptr / format.Alignment
	word = int(idx / bitsPerUint64)
	if word >= len(b.bits) {
		return 0, 0, false
	}
	return word, idx % bitsPerUint64, true
}
