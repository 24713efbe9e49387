// Package format holds the low-level word layout of a heapkit arena: the
// boundary-tag encoding of block headers and footers, alignment helpers and
// little-endian word access. Higher-level packages build block views and the
// allocator on top of it and never touch raw bits directly.
package format

const (
	// WordSize is the size of a header, footer or free-list link word.
	WordSize = 4

	// DoubleWordSize is two words; payload addresses are aligned to it.
	DoubleWordSize = 8

	// Alignment is the required alignment of every payload and block size.
	Alignment = DoubleWordSize

	// AlignmentMask is Alignment-1.
	AlignmentMask = Alignment - 1

	// MinBlockSize is the smallest block that can be free: header, pred link,
	// succ link and footer.
	//
	// Layout (free block, little-endian words):
	//
	//	bp-4   header   size | prev_alloc<<1 | alloc
	//	bp+0   pred     payload offset of the previous free block in the class, or 0
	//	bp+4   succ     payload offset of the next free block in the class, or 0
	//	...
	//	bp+size-8  footer  size | alloc
	MinBlockSize = 4 * WordSize

	// PrologueSize is the size of the permanently allocated prologue block.
	PrologueSize = DoubleWordSize

	// MaxBlockSize is the largest block size representable in a header word.
	MaxBlockSize = 0xFFFFFFFF &^ AlignmentMask

	// NilPtr is the null block pointer / null link. Offset 0 always lies inside
	// the size-class directory so it can never be a payload address.
	NilPtr = 0
)

// Header and footer bit fields.
const (
	// AllocBit marks the block itself as allocated (header and footer).
	AllocBit = 0x1

	// PrevAllocBit marks the previous block as allocated (header only).
	PrevAllocBit = 0x2

	// SizeMask selects the size field of a header or footer word.
	SizeMask = ^uint32(AlignmentMask)
)

// Offsets inside a block, relative to the block pointer (payload start).
const (
	// HeaderOffset is the header position relative to the block pointer (bp-4).
	HeaderOffset = -WordSize

	// PredOffset is the position of the predecessor link in a free block.
	PredOffset = 0

	// SuccOffset is the position of the successor link in a free block.
	SuccOffset = WordSize

	// FooterBack is subtracted from bp+size to reach the footer (bp+size-8).
	FooterBack = DoubleWordSize
)
