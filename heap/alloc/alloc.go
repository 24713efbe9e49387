package alloc

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Allocator is a segregated-fits allocator with boundary tags and
// address-ordered explicit free lists.
//
// NOT thread-safe.
type Allocator struct {
	ar     arena.Arena
	dt     DirtyTracker // Dirty range tracker for every word the allocator writes (may be nil)
	table  *sizeclass.Table
	layout block.Layout
	log    *slog.Logger
	check  bool

	stats Stats

	// Test hook: called before the arena grows (nil in production)
	onGrow func(n uint32)
}

// New formats an empty arena and performs the initial chunk growth.
//
// Parameters:
//   - ar: the arena to manage; must be empty
//   - dt: dirty tracker for the words the allocator writes (can be nil)
//   - config: size class configuration (use nil for sizeclass.DefaultConfig)
//   - opts: diagnostics (use nil for defaults)
func New(ar arena.Arena, dt DirtyTracker, config *sizeclass.Config, opts *Options) (*Allocator, error) {
	if config == nil {
		config = &sizeclass.DefaultConfig
	}
	if opts == nil {
		opts = &Options{}
	}
	if ar.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrArenaInUse, ar.Len())
	}

	table, err := sizeclass.NewTable(*config)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.L
		if logAlloc {
			log = logger.New(os.Stderr, slog.LevelDebug, false)
		}
	}

	a := &Allocator{
		ar:     ar,
		dt:     dt,
		table:  table,
		layout: block.Layout{NumClasses: table.NumClasses()},
		log:    log.With("component", "alloc"),
		check:  opts.CheckEachOp,
	}

	if _, err := ar.Grow(a.layout.InitialSize()); err != nil {
		return nil, fmt.Errorf("%w: initial layout: %w", ErrNoSpace, err)
	}
	a.layout.Format(ar.Bytes(), dt)

	if _, err := a.extendHeap(table.ChunkSize()); err != nil {
		return nil, err
	}
	return a, nil
}

// Alloc returns a block whose payload holds at least size bytes. The payload
// is 8-aligned and its contents are unspecified. Alloc(0) returns Nil and no
// error.
func (a *Allocator) Alloc(size uint32) (Ptr, error) {
	a.stats.AllocCalls++
	p, err := a.alloc(size)
	a.afterOp("alloc", p)
	return p, err
}

func (a *Allocator) alloc(size uint32) (Ptr, error) {
	if size == 0 {
		return Nil, nil
	}
	asize, ok := format.BlockSizeFor(size)
	if !ok {
		return Nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	if b, found := a.findFit(asize); found {
		a.stats.AllocFastPath++
		a.place(b, asize)
		return b.Ptr(), nil
	}

	b, err := a.extendHeap(max(asize, a.table.ChunkSize()))
	if err != nil {
		return Nil, err
	}
	a.stats.AllocSlowPath++
	a.place(b, asize)
	return b.Ptr(), nil
}

// Free releases a block returned by Alloc or Realloc. Free(Nil) is a no-op.
func (a *Allocator) Free(p Ptr) {
	a.stats.FreeCalls++
	if p == Nil {
		return
	}
	a.free(p)
	a.afterOp("free", p)
}

func (a *Allocator) free(p Ptr) {
	b := a.at(p)
	size := b.Size()
	a.stats.BytesFreed += int64(size)
	b.SetFree(size, b.PrevAllocated())
	a.coalesce(b)
}

// Payload returns the usable payload of an allocated block. The slice is a
// view into the arena and is invalidated by any call that grows it.
func (a *Allocator) Payload(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	return a.at(p).Payload()
}

// UsableSize returns the payload capacity of an allocated block.
func (a *Allocator) UsableSize(p Ptr) uint32 {
	if p == Nil {
		return 0
	}
	return a.at(p).Size() - format.WordSize
}

// Check runs the consistency checker against the live arena.
func (a *Allocator) Check() error {
	return verify.AllInvariants(a.ar.Bytes(), a.layout, a.table)
}

// Layout returns the arena layout.
func (a *Allocator) Layout() block.Layout { return a.layout }

// Table returns the size-class table.
func (a *Allocator) Table() *sizeclass.Table { return a.table }

// Bytes returns the whole arena. Invalidated by growth.
func (a *Allocator) Bytes() []byte { return a.ar.Bytes() }

// Arena returns the underlying arena.
func (a *Allocator) Arena() arena.Arena { return a.ar }

// findFit scans classes upward from the class of asize and returns the first
// block large enough. Classes below never hold a fitting block.
func (a *Allocator) findFit(asize uint32) (block.Block, bool) {
	buf := a.ar.Bytes()
	for class := a.table.ClassFor(asize); class < a.table.NumClasses(); class++ {
		for p := a.layout.Head(buf, class); p != Nil; {
			b := block.At(buf, p, a.dt)
			if b.Size() >= asize {
				return b, true
			}
			p = b.Succ()
		}
	}
	return block.Block{}, false
}

// place allocates asize bytes at the start of free block b, splitting off the
// remainder when it can form a block of its own.
func (a *Allocator) place(b block.Block, asize uint32) {
	a.remove(b)
	size := b.Size()
	prevAlloc := b.PrevAllocated()

	if size-asize >= format.MinBlockSize {
		a.stats.SplitCount++
		b.SetHeader(asize, prevAlloc, true)
		rest := b.Next()
		rest.SetFree(size-asize, true)
		a.coalesce(rest)
		size = asize
	} else {
		b.SetHeader(size, prevAlloc, true)
		b.Next().SetPrevAllocated(true)
	}
	a.stats.BytesAllocated += int64(size)
}

// extendHeap grows the arena by n bytes, turns the new space into a free
// block at the old epilogue position, writes a new epilogue and coalesces.
// The returned block is free and on its list. On failure the heap is
// unchanged.
func (a *Allocator) extendHeap(n uint32) (block.Block, error) {
	n = format.Align8(n)
	old := a.ar.Len()
	if uint64(old)+uint64(n) > format.MaxBlockSize {
		return block.Block{}, fmt.Errorf("%w: grow %d bytes: arena offset overflow", ErrNoSpace, n)
	}
	if a.onGrow != nil {
		a.onGrow(n)
	}

	base, err := a.ar.Grow(int(n))
	if err != nil {
		a.log.Debug("grow failed", "bytes", n, "arena", old, "err", err)
		return block.Block{}, fmt.Errorf("%w: grow %d bytes: %w", ErrNoSpace, n, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(n)
	a.log.Debug("grow", "bytes", n, "base", base, "arena", a.ar.Len())

	// The old epilogue header becomes the new block's header, so its
	// prev-allocated bit carries over.
	b := a.at(uint32(base))
	b.SetFree(n, b.PrevAllocated())
	b.Next().SetHeader(0, false, true)
	return a.coalesce(b), nil
}

// at returns a view of block p over the current arena bytes. Views must be
// re-created after extendHeap.
func (a *Allocator) at(p Ptr) block.Block {
	return block.At(a.ar.Bytes(), p, a.dt)
}

func (a *Allocator) afterOp(op string, p Ptr) {
	if !a.check {
		return
	}
	if err := a.Check(); err != nil {
		a.stats.CheckFailures++
		a.log.Error("heap check failed", "op", op, "ptr", p, "err", err)
	}
}
