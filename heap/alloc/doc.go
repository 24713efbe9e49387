// Package alloc implements a segregated-fits allocator over a single growable
// arena.
//
// # Overview
//
// Every block carries a one-word header holding its size, its own allocated
// bit and the allocated bit of the block before it. Free blocks additionally
// carry a footer mirroring size and allocated bit, and two link words (pred,
// succ) at the start of their payload. Allocated blocks have neither, so the
// per-allocation overhead is one word.
//
// Free blocks are kept in a fixed directory of power-of-two size classes
// (see heap/sizeclass). Each class list is doubly linked and sorted by
// address, which keeps neighbouring free blocks close in the list and lets
// the checker verify ordering with one pass.
//
// # Operations
//
//   - Alloc(size): first fit, starting at the class of the needed block size
//     and moving to larger classes. On a miss the arena grows by at least the
//     configured chunk; the new space is merged with a free block at the old
//     end of the heap before placing.
//   - Free(p): marks the block free and coalesces immediately with free
//     neighbours (four cases, decided by the prev-allocated bit and the next
//     block's allocated bit).
//   - Realloc(p, size): shrinks in place, grows into a free successor or into
//     fresh arena space at the end of the heap, and only copies when none of
//     those apply.
//
// A remainder is split off whenever it can form a block of at least
// format.MinBlockSize bytes.
//
// # Usage Example
//
//	ar := arena.NewMem(0)
//	a, err := alloc.New(ar, nil, nil, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(a.Payload(p), data)
//
//	p, err = a.Realloc(p, 400)
//	...
//	a.Free(p)
//
// # Handles
//
// A Ptr is the arena offset of a block's payload. Offset 0 lies inside the
// size-class directory and is never a payload, so it doubles as the nil
// handle. Payload slices returned by Payload are views into the arena and
// become invalid when the arena grows; re-fetch them from the Ptr.
//
// # Preconditions
//
// Freeing or resizing a Ptr that was not returned by this allocator, or was
// already freed, is not detected and corrupts the heap. Options.CheckEachOp
// runs the full consistency checker after every mutating call and logs the
// first violation, which helps to locate such misuse during development.
//
// # Concurrency
//
// An Allocator is NOT thread-safe. Callers must serialize all calls.
//
// # Debug Logging
//
// Set HEAPKIT_LOG_ALLOC=1 to log arena growth and moves to stderr when no
// logger is supplied through Options.
package alloc
