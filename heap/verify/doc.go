// Package verify checks the structural invariants of a heap arena.
//
// # Overview
//
// The checks operate on raw arena bytes plus the layout and size-class table
// the heap was built with. They never consult allocator state, so they can be
// run against a heap that is believed to be corrupt, or against an arena file
// left behind by another process.
//
// Validation categories:
//   - Sentinels: prologue and epilogue tags, arena length
//   - BlockChain: the address-order walk from the first block to the epilogue
//   - FreeLists: every class list, and the free blocks found by the walk
//
// # Quick Start
//
//	if err := verify.AllInvariants(data, layout, table); err != nil {
//	    fmt.Printf("heap corrupt: %v\n", err)
//	}
//
// # ValidationError
//
// All functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string // check that failed, e.g. "FreeLists"
//	    Message string // human-readable description
//	    Offset  int    // arena offset of the offending word or block (-1 if N/A)
//	}
//
// # Sentinels
//
// Validates:
//   - arena length is aligned and at least the empty-heap size
//   - prologue header and footer are size 8, allocated
//   - the last word of the arena is an allocated, zero-size epilogue
//
// # BlockChain
//
// Validates, for every block between prologue and epilogue:
//   - header size is aligned, at least the minimum block size, inside the arena
//   - free blocks carry a footer equal to the header (size and allocated bit)
//   - no two adjacent blocks are free
//   - the prev-allocated bit matches the actual state of the preceding block,
//     including the epilogue's bit
//   - the walk ends exactly at the last word of the arena
//
// # FreeLists
//
// Validates, for every class:
//   - each listed pointer lies inside the arena and names a free block
//   - each listed block sits in the class its size maps to
//   - addresses strictly increase along the list
//   - pred links mirror succ links
//   - no block is reached twice (cycles, or membership in two lists)
//
// and, for every free block found by the walk, that some list contains it.
//
// # AllInvariants
//
// Runs Sentinels, BlockChain and FreeLists in that order and returns the
// first failure.
package verify
