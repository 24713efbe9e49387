package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/heap/walker"
)

// Default layout: directory 14 words, pad, prologue at 64, first block at 72,
// one 256-byte chunk after New.
const (
	firstPtr     = 72
	initialArena = 72 + 256
)

func newTestAllocator(t testing.TB, limit int, cfg *sizeclass.Config) *Allocator {
	t.Helper()
	a, err := New(arena.NewMem(limit), nil, cfg, nil)
	require.NoError(t, err)
	requireConsistent(t, a)
	return a
}

func requireConsistent(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

func summary(t testing.TB, a *Allocator) walker.Summary {
	t.Helper()
	s, err := walker.Summarize(a.Bytes(), a.Layout())
	require.NoError(t, err)
	return s
}

func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

func requirePattern(t testing.TB, b []byte, seed byte, n int) {
	t.Helper()
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		require.Equal(t, seed+byte(i*7), b[i], "payload byte %d", i)
	}
}

func freeLists(a *Allocator) [][]Ptr {
	out := make([][]Ptr, a.Table().NumClasses())
	for c := range out {
		out[c] = a.FreeList(c)
	}
	return out
}
