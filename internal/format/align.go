package format

// Align8 returns n rounded up to the next multiple of Alignment.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(13) = 16
func Align8(n uint32) uint32 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// Align8Int is Align8 for int-typed lengths (arena growth requests).
func Align8Int(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n uint32) bool {
	return n&AlignmentMask == 0
}

// BlockSizeFor returns the block size needed to hold a payload of n bytes:
// the payload plus one header word, rounded to the alignment, and never below
// MinBlockSize. ok is false when the result would not fit in a header.
func BlockSizeFor(n uint32) (size uint32, ok bool) {
	if uint64(n)+WordSize+AlignmentMask > MaxBlockSize {
		return 0, false
	}
	size = Align8(n + WordSize)
	if size < MinBlockSize {
		size = MinBlockSize
	}
	return size, true
}
