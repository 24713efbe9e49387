package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/walker"
)

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls    int   // Total Alloc() calls
	AllocFastPath int   // Allocations served from a free list
	AllocSlowPath int   // Allocations that required arena growth
	FreeCalls     int   // Total Free() calls
	ResizeCalls   int   // Total Realloc() calls
	ResizeInPlace int   // Resizes that kept the handle
	ResizeMoved   int   // Resizes that copied to a new block
	GrowCalls     int   // Successful arena growths
	GrowBytes     int64 // Total bytes added to the arena

	BytesAllocated int64 // Block bytes handed out (headers included)
	BytesFreed     int64 // Block bytes returned
	SplitCount     int   // Blocks split on place or resize

	CoalesceNone int // Case A: no free neighbour
	CoalesceNext int // Case B: merged with the next block
	CoalescePrev int // Case C: merged into the previous block
	CoalesceBoth int // Case D: merged with both

	CheckFailures int // Consistency check failures with CheckEachOp
}

// Stats returns a copy of the counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// PrintStats writes counters and a heap summary to w.
func (a *Allocator) PrintStats(w io.Writer) {
	s := a.stats
	fmt.Fprintf(w, "\n=== ALLOCATOR STATISTICS (%s) ===\n", a.table)
	fmt.Fprintf(w, "Grow calls:         %d (%d bytes added)\n", s.GrowCalls, s.GrowBytes)
	fmt.Fprintf(
		w,
		"Alloc calls:        %d (fast: %d, slow: %d)\n",
		s.AllocCalls,
		s.AllocFastPath,
		s.AllocSlowPath,
	)
	fmt.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	fmt.Fprintf(w, "Realloc calls:      %d (in place: %d, moved: %d)\n",
		s.ResizeCalls, s.ResizeInPlace, s.ResizeMoved)
	fmt.Fprintf(w, "Bytes allocated:    %d\n", s.BytesAllocated)
	fmt.Fprintf(w, "Bytes freed:        %d\n", s.BytesFreed)
	fmt.Fprintf(w, "Block splits:       %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce none:      %d\n", s.CoalesceNone)
	fmt.Fprintf(w, "Coalesce next:      %d\n", s.CoalesceNext)
	fmt.Fprintf(w, "Coalesce prev:      %d\n", s.CoalescePrev)
	fmt.Fprintf(w, "Coalesce both:      %d\n", s.CoalesceBoth)
	if s.CheckFailures > 0 {
		fmt.Fprintf(w, "Check failures:     %d\n", s.CheckFailures)
	}

	sum, err := walker.Summarize(a.ar.Bytes(), a.layout)
	if err != nil {
		fmt.Fprintf(w, "\nHeap walk failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "\nArena size:         %d bytes\n", sum.ArenaSize)
	fmt.Fprintf(w, "Blocks:             %d (allocated: %d, free: %d)\n",
		sum.Blocks, sum.AllocatedBlocks, sum.FreeBlocks)
	fmt.Fprintf(w, "Free bytes:         %d (largest: %d)\n", sum.FreeBytes, sum.LargestFree)
	fmt.Fprintf(w, "Utilization:        %.1f%%\n", 100*sum.Utilization())
	fmt.Fprintf(w, "Fragmentation:      %.1f%%\n", 100*sum.Fragmentation())
	for class := range a.table.NumClasses() {
		if n := len(a.FreeList(class)); n > 0 {
			lo, hi := a.table.Bounds(class)
			fmt.Fprintf(w, "  class %2d [%d..%d]: %d free\n", class, lo, hi, n)
		}
	}
	fmt.Fprintf(w, "===================================\n\n")
}
