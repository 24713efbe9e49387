package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/sizeclass"
)

// NewAllocator returns an allocator over a fresh in-memory arena capped at
// limit bytes (0 selects arena.DefaultLimit). A nil config selects the
// default size classes.
//
// Example:
//
//	a := testutil.NewAllocator(t, nil, 0)
//	p, err := a.Alloc(100)
func NewAllocator(t *testing.T, config *sizeclass.Config, limit int) *alloc.Allocator {
	t.Helper()

	a, err := alloc.New(arena.NewMem(limit), nil, config, nil)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	return a
}

// NewFileAllocator is like NewAllocator but backs the heap with a mapped
// file in a temporary directory and tracks dirty ranges.
// The arena is closed when the test ends.
func NewFileAllocator(
	t *testing.T,
	config *sizeclass.Config,
	limit int,
) (*alloc.Allocator, *arena.File, *dirty.Tracker) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "heap.bin")
	ar, err := arena.CreateFile(path, limit)
	if err != nil {
		t.Fatalf("Failed to create file arena: %v", err)
	}
	t.Cleanup(func() { ar.Close() })

	dt := dirty.NewTracker()
	a, err := alloc.New(ar, dt, config, nil)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	return a, ar, dt
}

// ResolvePath finds a repository-relative file from whichever package
// directory the test runs in. Calls t.Skip if the file is not found.
func ResolvePath(t *testing.T, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../../" + relativePath,       // From package two levels deep (e.g., cmd/heapctl/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("File not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
