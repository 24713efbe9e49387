//go:build linux || darwin

package arena

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// Grow implements Arena: the file is extended with zeros and remapped at the
// new size. On failure the previous mapping is restored.
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
	newSize := base + n

	if a.data != nil {
		if err := unix.Munmap(a.data); err != nil {
			return base, fmt.Errorf("arena: unmap before grow: %w", err)
		}
		a.data = nil
	}

	if err := a.f.Truncate(int64(newSize)); err != nil {
		a.data, _ = a.mmap(base)
		return base, fmt.Errorf("arena: truncate file: %w", err)
	}

	data, err := a.mmap(newSize)
	if err != nil {
		_ = a.f.Truncate(int64(base))
		a.data, _ = a.mmap(base)
		return base, fmt.Errorf("arena: remap after grow: %w", err)
	}
	a.data = data
	a.size = newSize
	return base, nil
}

// Close unmaps and closes the file. The file keeps the arena contents.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	if a.data != nil {
		_ = unix.Munmap(a.data)
		a.data = nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}

func (a *File) mmap(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	return unix.Mmap(int(a.f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (a *File) flush(ctx context.Context, t *dirty.Tracker) error {
	return t.Flush(ctx, a.data)
}
