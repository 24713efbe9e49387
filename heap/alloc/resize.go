package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/internal/format"
)

// Realloc changes the payload size of p and returns the (possibly moved)
// handle. Payload bytes up to min(old, new) size are preserved.
//
//	Realloc(Nil, 0)  -> Nil
//	Realloc(p, 0)    -> Free(p), Nil
//	Realloc(Nil, n)  -> Alloc(n)
//
// On error p is left allocated and untouched.
func (a *Allocator) Realloc(p Ptr, size uint32) (Ptr, error) {
	a.stats.ResizeCalls++
	var (
		np  Ptr
		err error
	)
	switch {
	case p == Nil:
		np, err = a.alloc(size)
	case size == 0:
		a.free(p)
	default:
		np, err = a.resize(p, size)
	}
	a.afterOp("realloc", np)
	return np, err
}

func (a *Allocator) resize(p Ptr, size uint32) (Ptr, error) {
	asize, ok := format.BlockSizeFor(size)
	if !ok {
		return Nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	b := a.at(p)
	old := b.Size()

	if asize <= old {
		a.stats.ResizeInPlace++
		if old-asize >= format.MinBlockSize {
			a.stats.SplitCount++
			a.stats.BytesFreed += int64(old - asize)
			b.SetHeader(asize, b.PrevAllocated(), true)
			rest := b.Next()
			rest.SetFree(old-asize, true)
			a.coalesce(rest)
		}
		return p, nil
	}

	next := b.Next()
	if !next.IsAllocated() && old+next.Size() >= asize {
		a.stats.ResizeInPlace++
		a.remove(next)
		a.absorb(b, old+next.Size(), asize)
		return p, nil
	}

	if next.IsEpilogue() || (!next.IsAllocated() && next.Next().IsEpilogue()) {
		avail := old
		if !next.IsEpilogue() {
			avail += next.Size()
		}
		tail, err := a.extendHeap(max(asize-avail, a.table.ChunkSize()))
		if err == nil {
			a.stats.ResizeInPlace++
			b = a.at(p)
			a.remove(tail)
			a.absorb(b, old+tail.Size(), asize)
			return p, nil
		}
		// Growth failed; a fitting block elsewhere may still exist.
	}

	np, err := a.alloc(size)
	if err != nil {
		return Nil, err
	}
	a.stats.ResizeMoved++
	src := a.at(p).Payload()
	dst := a.at(np).Payload()
	n := copy(dst, src[:min(len(src), int(size))])
	a.log.Debug("resize moved", "from", p, "to", np, "old", old, "new", asize, "copied", n)
	a.free(p)
	return np, nil
}

// absorb turns allocated block b into an allocated block of asize bytes
// spanning total bytes of contiguous space, splitting off the remainder when
// it can form a block. The space after b must already be off the free lists.
func (a *Allocator) absorb(b block.Block, total, asize uint32) {
	old := b.Size()
	prevAlloc := b.PrevAllocated()
	if total-asize >= format.MinBlockSize {
		a.stats.SplitCount++
		b.SetHeader(asize, prevAlloc, true)
		rest := b.Next()
		rest.SetFree(total-asize, true)
		a.coalesce(rest)
		a.stats.BytesAllocated += int64(asize - old)
		return
	}
	b.SetHeader(total, prevAlloc, true)
	b.Next().SetPrevAllocated(true)
	a.stats.BytesAllocated += int64(total - old)
}
