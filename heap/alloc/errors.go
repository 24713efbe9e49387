package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block was large enough and the arena
	// could not grow. The heap is unchanged.
	ErrNoSpace = errors.New("alloc: no space")

	// ErrTooLarge indicates a request whose block size does not fit a header.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrArenaInUse indicates New was given an arena that already holds data.
	ErrArenaInUse = errors.New("alloc: arena is not empty")
)
