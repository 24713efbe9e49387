package block

import "github.com/joshuapare/heapkit/internal/format"

// Layout describes where the directory and sentinels live for a directory of
// NumClasses slots.
//
//	0                 directory: NumClasses words (head pointer or 0)
//	[pad]             one word when needed so the prologue header is at 4 mod 8
//	PrologueHeader    prologue header  size=8 prev=1 alloc=1
//	+4                prologue footer  size=8 alloc=1
//	+8                epilogue header (initial heap) / first block header
//	FirstPtr = +12    first block pointer, 8-aligned
type Layout struct {
	NumClasses int
}

// SlotOff returns the arena offset of directory slot i.
func (l Layout) SlotOff(i int) int {
	return i * format.WordSize
}

// PrologueHeader returns the arena offset of the prologue header word.
func (l Layout) PrologueHeader() int {
	off := l.NumClasses * format.WordSize
	if off%format.DoubleWordSize == 0 {
		off += format.WordSize
	}
	return off
}

// Prologue returns the prologue block pointer.
func (l Layout) Prologue() uint32 {
	return uint32(l.PrologueHeader() + format.WordSize)
}

// FirstPtr returns the block pointer of the first block after the prologue.
// In a freshly initialised heap that is the epilogue.
func (l Layout) FirstPtr() uint32 {
	return l.Prologue() + format.PrologueSize
}

// InitialSize is the arena length of an empty heap: directory, pad, prologue
// and epilogue header.
func (l Layout) InitialSize() int {
	return int(l.FirstPtr())
}

// Head reads directory slot i.
func (l Layout) Head(buf []byte, i int) uint32 {
	return format.ReadU32(buf, l.SlotOff(i))
}

// SetHead writes directory slot i.
func (l Layout) SetHead(buf []byte, dt DirtyTracker, i int, ptr uint32) {
	off := l.SlotOff(i)
	format.PutU32(buf, off, ptr)
	if dt != nil {
		dt.Add(off, format.WordSize)
	}
}

// Format writes an empty directory, the prologue and the epilogue into buf,
// which must be at least InitialSize bytes.
func (l Layout) Format(buf []byte, dt DirtyTracker) {
	for i := range l.NumClasses {
		l.SetHead(buf, dt, i, format.NilPtr)
	}
	if pad := l.NumClasses * format.WordSize; pad != l.PrologueHeader() {
		format.PutU32(buf, pad, 0)
		if dt != nil {
			dt.Add(pad, format.WordSize)
		}
	}
	pro := At(buf, l.Prologue(), dt)
	pro.SetHeader(format.PrologueSize, true, true)
	pro.SetFooter(format.PrologueSize, true)
	pro.Next().SetHeader(0, true, true)
}

// Epilogue returns the epilogue view: its header is the last word of buf.
func (l Layout) Epilogue(buf []byte, dt DirtyTracker) Block {
	return At(buf, uint32(len(buf)), dt)
}
