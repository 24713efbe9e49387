package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/logger"
)

// heapSetup selects the arena and size classes shared by the replaying commands.
type heapSetup struct {
	config string
	file   string
	limit  int
}

// openHeap builds an allocator over a fresh arena. The returned closer
// flushes and closes a file arena; for an in-memory arena it does nothing.
func (s heapSetup) openHeap() (*alloc.Allocator, func(ctx context.Context) error, error) {
	cfg, err := resolveConfig(s.config)
	if err != nil {
		return nil, nil, err
	}

	if s.file == "" {
		a, err := alloc.New(arena.NewMem(s.limit), nil, &cfg, nil)
		if err != nil {
			return nil, nil, err
		}
		return a, func(context.Context) error { return nil }, nil
	}

	printVerbose("Creating file arena: %s\n", s.file)
	ar, err := arena.CreateFile(s.file, s.limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arena: %w", err)
	}
	dt := dirty.NewTracker()
	a, err := alloc.New(ar, dt, &cfg, nil)
	if err != nil {
		ar.Close()
		return nil, nil, err
	}

	closeFn := func(ctx context.Context) error {
		ranges := dt.Len()
		flushErr := ar.Flush(ctx, dt)
		logger.Debug("flushed file arena", "path", s.file, "ranges", ranges, "bytes", ar.Len())
		return errors.Join(flushErr, ar.Close())
	}
	return a, closeFn, nil
}
