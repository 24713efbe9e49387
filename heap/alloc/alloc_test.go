package alloc

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/internal/format"
)

func TestNew_InitialHeap(t *testing.T) {
	a := newTestAllocator(t, 0, nil)

	require.Equal(t, initialArena, len(a.Bytes()))
	require.Equal(t, []Ptr{firstPtr}, a.FreeList(2), "one 256-byte chunk in class 2")
	require.Equal(t, 1, a.Stats().GrowCalls)

	s := summary(t, a)
	require.Equal(t, 1, s.FreeBlocks)
	require.Zero(t, s.AllocatedBlocks)
	require.Equal(t, uint32(256), s.LargestFree)
}

func TestNew_RejectsNonEmptyArena(t *testing.T) {
	ar := arena.NewMem(0)
	_, err := ar.Grow(8)
	require.NoError(t, err)

	_, err = New(ar, nil, nil, nil)
	require.ErrorIs(t, err, ErrArenaInUse)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := sizeclass.Config{Name: "bad", NumClasses: 1, LargestPow2: 10, ChunkSize: 256}
	_, err := New(arena.NewMem(0), nil, &cfg, nil)
	require.Error(t, err)
}

func TestNew_ArenaTooSmall(t *testing.T) {
	_, err := New(arena.NewMem(100), nil, nil, nil)
	require.ErrorIs(t, err, ErrNoSpace)
	require.ErrorIs(t, err, arena.ErrExhausted)
}

func TestAlloc_Zero(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	before := append([]byte(nil), a.Bytes()...)

	p, err := a.Alloc(0)
	require.NoError(t, err)
	require.Equal(t, Nil, p)
	require.Equal(t, before, a.Bytes(), "Alloc(0) has no side effects")
}

func TestAlloc_AlignedAndWritable(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	for _, n := range []uint32{1, 7, 8, 12, 13, 100, 255, 1000, 5000} {
		p, err := a.Alloc(n)
		require.NoError(t, err)
		require.NotEqual(t, Nil, p)
		require.Zero(t, p%format.Alignment, "payload %d not aligned", p)
		require.GreaterOrEqual(t, len(a.Payload(p)), int(n))
		require.GreaterOrEqual(t, a.UsableSize(p), n)
		fill(a.Payload(p)[:n], byte(n))
		requireConsistent(t, a)
	}
}

func TestAlloc_TooLarge(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	_, err := a.Alloc(math.MaxUint32)
	require.ErrorIs(t, err, ErrTooLarge)
	requireConsistent(t, a)
}

// Allocate 16, 32, 16; free the 32; a new 32 must reuse its address without
// growing the arena.
func TestScenario_FirstFitReuse(t *testing.T) {
	a := newTestAllocator(t, 0, nil)

	p1, err := a.Alloc(16)
	require.NoError(t, err)
	p2, err := a.Alloc(32)
	require.NoError(t, err)
	p3, err := a.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, []Ptr{firstPtr, firstPtr + 24, firstPtr + 64}, []Ptr{p1, p2, p3})

	a.Free(p2)
	requireConsistent(t, a)
	grows := a.Stats().GrowCalls
	arenaLen := len(a.Bytes())

	p4, err := a.Alloc(32)
	require.NoError(t, err)
	require.Equal(t, p2, p4)
	require.Equal(t, grows, a.Stats().GrowCalls)
	require.Equal(t, arenaLen, len(a.Bytes()))
	requireConsistent(t, a)
}

// Allocate until the arena grows again, then free everything: only free
// space may remain, merged into one block.
func TestScenario_GrowThenFreeAll(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	grows := a.Stats().GrowCalls

	var ptrs []Ptr
	for a.Stats().GrowCalls == grows {
		p, err := a.Alloc(40)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.Greater(t, len(ptrs), 1)
	requireConsistent(t, a)

	for _, p := range ptrs {
		a.Free(p)
		requireConsistent(t, a)
	}

	s := summary(t, a)
	require.Zero(t, s.AllocatedBlocks)
	require.Equal(t, 1, s.FreeBlocks)
	require.Equal(t, uint64(len(a.Bytes())-firstPtr), s.FreeBytes)
}

func TestScenario_ResizeDownAndUp(t *testing.T) {
	a := newTestAllocator(t, 0, nil)

	p, err := a.Alloc(100)
	require.NoError(t, err)
	fill(a.Payload(p)[:100], 0x30)

	p, err = a.Realloc(p, 40)
	require.NoError(t, err)
	requireConsistent(t, a)
	requirePattern(t, a.Payload(p), 0x30, 40)

	p, err = a.Realloc(p, 90)
	require.NoError(t, err)
	requireConsistent(t, a)
	requirePattern(t, a.Payload(p), 0x30, 40)
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []uint32{1, 24, 100, 248, 252, 600} {
		a := newTestAllocator(t, 0, nil)
		// Warm up so the heap is not in its pristine state.
		keep, err := a.Alloc(50)
		require.NoError(t, err)

		before := summary(t, a)
		lists := freeLists(a)

		p, err := a.Alloc(n)
		require.NoError(t, err)
		p, err = a.Realloc(p, n)
		require.NoError(t, err)
		a.Free(p)

		after := summary(t, a)
		assert.Equal(t, before.Blocks, after.Blocks, "n=%d", n)
		assert.Equal(t, before.FreeBlocks, after.FreeBlocks, "n=%d", n)
		if len(a.Bytes()) == before.ArenaSize {
			assert.Equal(t, lists, freeLists(a), "n=%d", n)
		}
		requireConsistent(t, a)
		a.Free(keep)
	}
}

func TestRealloc_Boundaries(t *testing.T) {
	a := newTestAllocator(t, 0, nil)

	p, err := a.Realloc(Nil, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, p)

	p, err = a.Alloc(64)
	require.NoError(t, err)
	q, err := a.Realloc(p, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, q)
	require.Zero(t, summary(t, a).AllocatedBlocks, "Realloc(p, 0) releases p")
	requireConsistent(t, a)
}

func TestRealloc_NilBehavesAsAlloc(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	b := newTestAllocator(t, 0, nil)

	for _, n := range []uint32{10, 300, 40} {
		pa, err := a.Alloc(n)
		require.NoError(t, err)
		pb, err := b.Realloc(Nil, n)
		require.NoError(t, err)
		require.Equal(t, pa, pb)
	}
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestFree_Nil(t *testing.T) {
	a := newTestAllocator(t, 0, nil)
	before := append([]byte(nil), a.Bytes()...)
	a.Free(Nil)
	require.Equal(t, before, a.Bytes())
}

func TestExhaustion_LeavesHeapConsistent(t *testing.T) {
	a := newTestAllocator(t, 1024, nil)

	p, err := a.Alloc(100)
	require.NoError(t, err)
	fill(a.Payload(p)[:100], 0x11)
	snapshot := append([]byte(nil), a.Bytes()...)

	_, err = a.Alloc(2000)
	require.ErrorIs(t, err, ErrNoSpace)
	require.ErrorIs(t, err, arena.ErrExhausted)
	require.Equal(t, snapshot, a.Bytes(), "failed Alloc must not touch the heap")
	requireConsistent(t, a)

	q, err := a.Realloc(p, 5000)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, Nil, q)
	require.Equal(t, snapshot, a.Bytes(), "failed Realloc must not touch the heap")
	requirePattern(t, a.Payload(p), 0x11, 100)
	requireConsistent(t, a)

	// Space that still fits is served.
	_, err = a.Alloc(100)
	require.NoError(t, err)
	requireConsistent(t, a)
}

func TestCheckEachOp_LogsViolations(t *testing.T) {
	var logs bytes.Buffer
	opts := &Options{
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
		CheckEachOp: true,
	}
	a, err := New(arena.NewMem(0), nil, nil, opts)
	require.NoError(t, err)

	_, err = a.Alloc(16)
	require.NoError(t, err)
	require.Zero(t, a.Stats().CheckFailures)

	// Corrupt the prologue footer; the allocator never reads it.
	pro := a.Layout().Prologue()
	format.PutU32(a.Bytes(), int(pro), 0)

	_, err = a.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, 1, a.Stats().CheckFailures)
	require.Contains(t, logs.String(), "heap check failed")
	require.Contains(t, logs.String(), "op=alloc")
}

func TestStats_Counters(t *testing.T) {
	a := newTestAllocator(t, 0, nil)

	p, err := a.Alloc(16)
	require.NoError(t, err)
	q, err := a.Alloc(400)
	require.NoError(t, err)
	a.Free(p)
	_, err = a.Realloc(q, 10)
	require.NoError(t, err)

	s := a.Stats()
	assert.Equal(t, 2, s.AllocCalls)
	assert.Equal(t, 1, s.AllocFastPath)
	assert.Equal(t, 1, s.AllocSlowPath)
	assert.Equal(t, 1, s.FreeCalls)
	assert.Equal(t, 1, s.ResizeCalls)
	assert.Equal(t, 1, s.ResizeInPlace)
	assert.Equal(t, 2, s.GrowCalls)
	assert.Positive(t, s.SplitCount)

	var out bytes.Buffer
	a.PrintStats(&out)
	assert.Contains(t, out.String(), "Alloc calls:        2 (fast: 1, slow: 1)")
	assert.Contains(t, out.String(), "Blocks:")
}

func TestConfigs_Consistent(t *testing.T) {
	for _, cfg := range sizeclass.Configs() {
		t.Run(cfg.Name, func(t *testing.T) {
			a := newTestAllocator(t, 0, &cfg)
			var ptrs []Ptr
			for i := range 64 {
				p, err := a.Alloc(uint32(1 + i*37%900))
				require.NoError(t, err)
				ptrs = append(ptrs, p)
			}
			requireConsistent(t, a)
			for i, p := range ptrs {
				if i%3 == 0 {
					a.Free(p)
				}
			}
			requireConsistent(t, a)
			for i, p := range ptrs {
				if i%3 == 1 {
					_, err := a.Realloc(p, 2000)
					require.NoError(t, err)
				}
			}
			requireConsistent(t, a)
		})
	}
}
