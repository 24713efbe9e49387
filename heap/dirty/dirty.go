package dirty

import (
	"context"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the flush granularity.
	standardPageSize = 4096

	// compactThreshold bounds the raw range list; past it the list is merged
	// in place so long allocator runs don't grow it without limit.
	compactThreshold = 4096
)

// Range is a dirty byte range relative to the arena start.
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges   []Range
	pageSize int64
	limit    int // raw length that triggers an in-place merge
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
		limit:    compactThreshold,
	}
}

// Add records a dirty range. Consecutive word writes that touch or overlap the
// previous range extend it instead of appending.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	r := Range{Off: int64(off), Len: int64(length)}
	if n := len(t.ranges); n > 0 {
		last := &t.ranges[n-1]
		if r.Off >= last.Off && r.Off <= last.Off+last.Len {
			if end := r.Off + r.Len; end > last.Off+last.Len {
				last.Len = end - last.Off
			}
			return
		}
	}
	t.ranges = append(t.ranges, r)
	if len(t.ranges) >= t.limit {
		t.ranges = append(t.ranges[:0], t.coalesce()...)
		if len(t.ranges) >= t.limit/2 {
			t.limit *= 2
		}
	}
}

// Len returns the number of raw ranges currently held.
func (t *Tracker) Len() int {
	return len(t.ranges)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) Ranges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// CoalescedRanges returns the page-aligned, sorted, merged ranges that Flush
// would write.
func (t *Tracker) CoalescedRanges() []Range {
	return t.coalesce()
}

// Flush writes the dirty pages of data (the full arena mapping) back to its
// file and clears the tracker. The context is checked between ranges; on
// cancellation some ranges may already have been flushed.
func (t *Tracker) Flush(ctx context.Context, data []byte) error {
	if len(t.ranges) == 0 || len(data) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}
	t.ranges = t.ranges[:0]
	return nil
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			if end := next.Off + next.Len; end > current.Off+current.Len {
				current.Len = end - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
