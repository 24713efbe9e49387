// Package block provides zero-copy views over the blocks of a heapkit arena
// and the fixed arena layout (directory, prologue, epilogue).
//
// A Block is addressed by its block pointer: the arena offset of its payload.
// The header word sits one word before it.
//
//	allocated:  | header | payload .................................. |
//	free:       | header | pred | succ | ..................... | footer |
//	            ^        ^
//	            bp-4     bp
//
// All accessors go through slice indexing, so an out-of-range block panics
// instead of reading foreign memory. Views are invalidated when the arena
// grows; re-create them from the new arena bytes.
package block

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// DirtyTracker is the canonical tracker interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Block is a view of one block.
type Block struct {
	buf []byte
	ptr uint32
	dt  DirtyTracker
}

// At returns a view of the block whose payload starts at ptr. dt may be nil.
func At(buf []byte, ptr uint32, dt DirtyTracker) Block {
	return Block{buf: buf, ptr: ptr, dt: dt}
}

// Checked is At with a bounds check of the header and, when the size is
// non-zero, of the whole block.
func Checked(buf []byte, ptr uint32) (Block, error) {
	hdr := int(ptr) + format.HeaderOffset
	if !format.HasWord(buf, hdr) {
		return Block{}, fmt.Errorf("block %d: header %w", ptr, format.ErrTruncated)
	}
	b := Block{buf: buf, ptr: ptr}
	if end := int64(ptr) + int64(b.Size()) + format.HeaderOffset; end > int64(len(buf)) {
		return Block{}, fmt.Errorf("block %d: size %d %w", ptr, b.Size(), format.ErrTruncated)
	}
	return b, nil
}

// Ptr returns the block pointer (payload offset).
func (b Block) Ptr() uint32 { return b.ptr }

// HeaderOff returns the arena offset of the header word.
func (b Block) HeaderOff() int { return int(b.ptr) + format.HeaderOffset }

// FooterOff returns the arena offset of the footer word for the current size.
func (b Block) FooterOff() int { return int(b.ptr) + int(b.Size()) - format.FooterBack }

// Header returns the raw header word.
func (b Block) Header() uint32 { return format.ReadU32(b.buf, b.HeaderOff()) }

// Footer returns the raw footer word. Only meaningful for free blocks.
func (b Block) Footer() uint32 { return format.ReadU32(b.buf, b.FooterOff()) }

// Size returns the block size including the header.
func (b Block) Size() uint32 { return format.TagSize(b.Header()) }

// IsAllocated reports the block's own allocation bit.
func (b Block) IsAllocated() bool { return format.TagAlloc(b.Header()) }

// PrevAllocated reports the previous-block-allocated bit.
func (b Block) PrevAllocated() bool { return format.TagPrevAlloc(b.Header()) }

// IsEpilogue reports whether this is the zero-size end sentinel.
func (b Block) IsEpilogue() bool { return b.Size() == 0 }

// SetHeader writes the header word.
func (b Block) SetHeader(size uint32, prevAlloc, alloc bool) {
	b.put(b.HeaderOff(), format.PackHeader(size, prevAlloc, alloc))
}

// SetFooter writes the footer word at the end of a block of the given size.
func (b Block) SetFooter(size uint32, alloc bool) {
	b.put(int(b.ptr)+int(size)-format.FooterBack, format.PackFooter(size, alloc))
}

// SetFree writes header and footer of a free block of the given size.
func (b Block) SetFree(size uint32, prevAlloc bool) {
	b.SetHeader(size, prevAlloc, false)
	b.SetFooter(size, false)
}

// SetPrevAllocated rewrites only the previous-allocated bit.
func (b Block) SetPrevAllocated(v bool) {
	h := b.Header()
	if format.TagPrevAlloc(h) == v {
		return
	}
	b.put(b.HeaderOff(), format.WithPrevAlloc(h, v))
}

// Next returns the block that follows this one in the arena.
func (b Block) Next() Block {
	return Block{buf: b.buf, ptr: b.ptr + b.Size(), dt: b.dt}
}

// Prev returns the preceding block by reading its footer. Only valid when
// PrevAllocated is false: allocated blocks carry no footer.
func (b Block) Prev() Block {
	ftr := format.ReadU32(b.buf, int(b.ptr)-format.DoubleWordSize)
	return Block{buf: b.buf, ptr: b.ptr - format.TagSize(ftr), dt: b.dt}
}

// Pred returns the predecessor link of a free block.
func (b Block) Pred() uint32 { return format.ReadU32(b.buf, int(b.ptr)+format.PredOffset) }

// Succ returns the successor link of a free block.
func (b Block) Succ() uint32 { return format.ReadU32(b.buf, int(b.ptr)+format.SuccOffset) }

// SetPred writes the predecessor link.
func (b Block) SetPred(p uint32) { b.put(int(b.ptr)+format.PredOffset, p) }

// SetSucc writes the successor link.
func (b Block) SetSucc(p uint32) { b.put(int(b.ptr)+format.SuccOffset, p) }

// Payload returns the usable payload of an allocated block: everything up to
// the next block's header.
func (b Block) Payload() []byte {
	start := int(b.ptr)
	end := start + int(b.Size()) - format.WordSize
	return b.buf[start:end:end]
}

// String renders the block for debug output.
func (b Block) String() string {
	state := "free"
	if b.IsAllocated() {
		state = "alloc"
	}
	return fmt.Sprintf("[%d size=%d %s prev=%v]", b.ptr, b.Size(), state, b.PrevAllocated())
}

func (b Block) put(off int, v uint32) {
	format.PutU32(b.buf, off, v)
	if b.dt != nil {
		b.dt.Add(off, format.WordSize)
	}
}
