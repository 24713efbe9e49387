package arena

import (
	"context"
	"os"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// File is an arena backed by a file. On linux and darwin the file is mapped
// MAP_SHARED and grown by truncate + remap; elsewhere the arena lives in
// memory and is written back on Flush and Close.
//
// NOT thread-safe.
type File struct {
	f     *os.File
	data  []byte
	size  int
	limit int
	path  string
}

// CreateFile creates (or truncates) path and returns an empty arena backed by
// it. A limit <= 0 selects DefaultLimit.
func CreateFile(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, limit: effectiveLimit(limit), path: path}, nil
}

// Bytes implements Arena.
func (a *File) Bytes() []byte { return a.data }

// Len implements Arena.
func (a *File) Len() int { return a.size }

// Path returns the backing file path.
func (a *File) Path() string { return a.path }

// Flush writes the ranges recorded in t back to the file and clears t.
func (a *File) Flush(ctx context.Context, t *dirty.Tracker) error {
	if a.f == nil {
		return ErrClosed
	}
	if t == nil {
		return nil
	}
	return a.flush(ctx, t)
}
