package format

import "errors"

var (
	// ErrTruncated indicates a word or block extends past the end of the arena.
	ErrTruncated = errors.New("format: truncated arena")

	// ErrMisaligned indicates a size or offset that is not a multiple of Alignment.
	ErrMisaligned = errors.New("format: misaligned value")
)
