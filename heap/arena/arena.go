// Package arena provides the growth collaborator behind the allocator: a
// contiguous byte region that can only be extended at its end.
//
// Two implementations exist:
//
//   - Mem: a capped, slice-backed arena (the default).
//   - File: a file-backed arena mapped with mmap on unix systems, so a heap can
//     be inspected after the process exits.
//
// Both invalidate any slice previously returned by Bytes when Grow succeeds.
package arena

import "errors"

// DefaultLimit is the maximum arena size used when no limit is given.
const DefaultLimit = 20 << 20

var (
	// ErrExhausted is returned when a growth request would exceed the limit.
	ErrExhausted = errors.New("arena: exhausted")

	// ErrClosed is returned by operations on a closed File arena.
	ErrClosed = errors.New("arena: closed")

	// ErrInvalidGrow is returned for negative growth requests.
	ErrInvalidGrow = errors.New("arena: invalid growth request")
)

// Arena is a contiguous region that grows at its end.
type Arena interface {
	// Grow extends the arena by n bytes and returns the offset of the first
	// new byte (the previous length). The new bytes are zero. On error the
	// arena is unchanged.
	Grow(n int) (base int, err error)

	// Bytes returns the whole arena. The slice is invalid after Grow.
	Bytes() []byte

	// Len returns the current arena length.
	Len() int
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
