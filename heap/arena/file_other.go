//go:build !linux && !darwin

package arena

import (
	"context"
	"fmt"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// Grow implements Arena. The file length follows the arena; contents are
// written back on Flush and Close.
func (a *File) Grow(n int) (int, error) {
	base := a.size
	if a.f == nil {
		return base, ErrClosed
	}
	if n < 0 {
		return base, fmt.Errorf("%w: %d bytes", ErrInvalidGrow, n)
	}
	if n > a.limit-base {
		return base, fmt.Errorf("grow %d bytes at %d (limit %d): %w", n, base, a.limit, ErrExhausted)
	}
	if n == 0 {
		return base, nil
	}
	if err := a.f.Truncate(int64(base + n)); err != nil {
		return base, fmt.Errorf("arena: truncate file: %w", err)
	}
	a.data = append(a.data, make([]byte, n)...)
	a.size = base + n
	return base, nil
}

// Close writes the whole arena and closes the file.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	_, werr := a.f.WriteAt(a.data, 0)
	err := a.f.Close()
	a.f = nil
	a.data = nil
	if werr != nil {
		return werr
	}
	return err
}

func (a *File) flush(ctx context.Context, t *dirty.Tracker) error {
	for _, r := range t.CoalescedRanges() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := int(r.Off)
		end := min(int(r.Off+r.Len), len(a.data))
		if start >= end {
			continue
		}
		if _, err := a.f.WriteAt(a.data[start:end], int64(start)); err != nil {
			return err
		}
	}
	t.Reset()
	return nil
}
