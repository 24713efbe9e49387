package format

// Boundary tags.
//
// Header word:
//
//	31                                   3   2   1   0
//	+------------------------------------+---+---+---+
//	|                size                | 0 | p | a |
//	+------------------------------------+---+---+---+
//	p = previous block allocated, a = this block allocated
//
// Footer word (free blocks only) mirrors size and a; bit 1 is always zero.

// PackHeader encodes a header word. size must be a multiple of Alignment.
func PackHeader(size uint32, prevAlloc, alloc bool) uint32 {
	w := size
	if prevAlloc {
		w |= PrevAllocBit
	}
	if alloc {
		w |= AllocBit
	}
	return w
}

// PackFooter encodes a footer word.
func PackFooter(size uint32, alloc bool) uint32 {
	w := size
	if alloc {
		w |= AllocBit
	}
	return w
}

// TagSize decodes the size field of a header or footer word.
func TagSize(w uint32) uint32 { return w & SizeMask }

// TagAlloc decodes the self-allocated bit.
func TagAlloc(w uint32) bool { return w&AllocBit != 0 }

// TagPrevAlloc decodes the previous-allocated bit of a header word.
func TagPrevAlloc(w uint32) bool { return w&PrevAllocBit != 0 }

// WithPrevAlloc returns w with the previous-allocated bit set to v.
func WithPrevAlloc(w uint32, v bool) uint32 {
	if v {
		return w | PrevAllocBit
	}
	return w &^ PrevAllocBit
}
