package walker

import (
	"errors"
	"io"

	"github.com/joshuapare/heapkit/heap/block"
)

// Summary aggregates one address-order walk of the heap.
type Summary struct {
	Blocks          int
	AllocatedBlocks int
	FreeBlocks      int
	AllocatedBytes  uint64 // block sizes, headers included
	FreeBytes       uint64
	LargestFree     uint32
	ArenaSize       int
}

// Utilization is the fraction of the arena held by allocated blocks.
func (s Summary) Utilization() float64 {
	if s.ArenaSize == 0 {
		return 0
	}
	return float64(s.AllocatedBytes) / float64(s.ArenaSize)
}

// Fragmentation is 1 - largest free block / total free bytes: 0 when all free
// space is one block, approaching 1 when it is scattered.
func (s Summary) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// Summarize walks data and returns the block counts and byte totals.
func Summarize(data []byte, layout block.Layout) (Summary, error) {
	s := Summary{ArenaSize: len(data)}
	it := NewIterator(data, layout)
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return s, err
		}
		s.Blocks++
		size := b.Size()
		if b.IsAllocated() {
			s.AllocatedBlocks++
			s.AllocatedBytes += uint64(size)
			continue
		}
		s.FreeBlocks++
		s.FreeBytes += uint64(size)
		s.LargestFree = max(s.LargestFree, size)
	}
}
