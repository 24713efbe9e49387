package walker

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/internal/format"
)

// Iterator walks the regular blocks of an arena from the first block after
// the prologue up to, but not including, the epilogue.
type Iterator struct {
	data []byte
	next uint32
	done bool
}

// NewIterator returns an iterator positioned at the first block.
func NewIterator(data []byte, layout block.Layout) *Iterator {
	return &Iterator{data: data, next: layout.FirstPtr()}
}

// Next returns the next block. It returns io.EOF once the epilogue is
// reached, and a descriptive error if a block header is out of bounds or
// carries an impossible size. The iterator stops after the first error.
func (it *Iterator) Next() (block.Block, error) {
	if it.done {
		return block.Block{}, io.EOF
	}

	b, err := block.Checked(it.data, it.next)
	if err != nil {
		it.done = true
		return block.Block{}, err
	}
	if b.IsEpilogue() {
		it.done = true
		return block.Block{}, io.EOF
	}

	size := b.Size()
	if size < format.MinBlockSize || !format.IsAligned(it.next) {
		it.done = true
		return block.Block{}, fmt.Errorf("walker: block %d size %d: %w", it.next, size, format.ErrMisaligned)
	}

	it.next += size
	return b, nil
}

// Offset returns the pointer of the block the next call to Next will decode.
func (it *Iterator) Offset() uint32 { return it.next }
