package alloc

import "github.com/joshuapare/heapkit/heap/block"

// coalesce merges free block b with its free neighbours, inserts the result
// into its class list and returns it. b must already carry free header and
// footer tags and must not be on any list.
//
//	A  prev allocated, next allocated   b stands alone
//	B  prev allocated, next free        b absorbs next
//	C  prev free, next allocated        prev absorbs b
//	D  prev free, next free             prev absorbs b and next
func (a *Allocator) coalesce(b block.Block) block.Block {
	prevAlloc := b.PrevAllocated()
	next := b.Next()
	nextAlloc := next.IsAllocated()
	size := b.Size()

	switch {
	case prevAlloc && nextAlloc:
		a.stats.CoalesceNone++

	case prevAlloc && !nextAlloc:
		a.stats.CoalesceNext++
		a.remove(next)
		size += next.Size()
		b.SetFree(size, true)

	case !prevAlloc && nextAlloc:
		a.stats.CoalescePrev++
		prev := b.Prev()
		a.remove(prev)
		size += prev.Size()
		prev.SetFree(size, prev.PrevAllocated())
		b = prev

	default:
		a.stats.CoalesceBoth++
		prev := b.Prev()
		a.remove(prev)
		a.remove(next)
		size += prev.Size() + next.Size()
		prev.SetFree(size, prev.PrevAllocated())
		b = prev
	}

	b.Next().SetPrevAllocated(false)
	a.insertFree(b)
	return b
}
