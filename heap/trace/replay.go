package trace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// ErrCorrupted indicates a payload lost bytes written by the trace.
	ErrCorrupted = errors.New("trace: payload corrupted")

	// ErrOverlap indicates two live payloads share bytes.
	ErrOverlap = errors.New("trace: payloads overlap")

	// ErrMisaligned indicates a payload that is not 8-aligned.
	ErrMisaligned = errors.New("trace: payload misaligned")

	// ErrInconsistent indicates the heap checker failed after an op.
	ErrInconsistent = errors.New("trace: heap inconsistent")
)

// Options controls a replay.
type Options struct {
	// Check runs the heap checker after every op.
	Check bool

	// MaxOps stops the replay after this many ops. 0 replays everything.
	MaxOps int

	// Logger receives per-op debug records. Nil selects the process logger.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Name        string
	Ops         int
	Allocs      int
	Reallocs    int
	Frees       int
	PeakLive    uint64 // peak sum of live requested sizes
	ArenaSize   int
	Utilization float64 // PeakLive / ArenaSize
	Stats       alloc.Stats
}

type liveRange struct {
	ptr  alloc.Ptr
	size uint32
}

type replayer struct {
	a    *alloc.Allocator
	log  *slog.Logger
	live map[int]liveRange
	cur  uint64
	res  Result
}

// Replay executes tr against a. It stops at the first allocator error,
// integrity violation or checker failure, and between ops when ctx is done.
func Replay(ctx context.Context, tr *Trace, a *alloc.Allocator, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.L
	}
	r := &replayer{
		a:    a,
		log:  log.With("trace", tr.Name),
		live: make(map[int]liveRange, tr.NumIDs),
		res:  Result{Name: tr.Name},
	}

	ops := tr.Ops
	if opts.MaxOps > 0 && opts.MaxOps < len(ops) {
		ops = ops[:opts.MaxOps]
	}
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return r.finish(), err
		}
		if err := r.step(op); err != nil {
			return r.finish(), fmt.Errorf("op %d (line %d, %s id %d): %w", i, op.Line, op.Kind, op.ID, err)
		}
		if opts.Check {
			if err := a.Check(); err != nil {
				return r.finish(), fmt.Errorf("op %d (line %d, %s id %d): %w: %w",
					i, op.Line, op.Kind, op.ID, ErrInconsistent, err)
			}
		}
		r.res.Ops++
	}
	return r.finish(), nil
}

func (r *replayer) finish() Result {
	r.res.ArenaSize = len(r.a.Bytes())
	if r.res.ArenaSize > 0 {
		r.res.Utilization = float64(r.res.PeakLive) / float64(r.res.ArenaSize)
	}
	r.res.Stats = r.a.Stats()
	return r.res
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		r.res.Allocs++
		if old, ok := r.live[op.ID]; ok {
			r.log.Warn("id allocated twice, releasing the old block", "id", op.ID, "line", op.Line)
			r.release(op.ID, old)
		}
		p, err := r.a.Alloc(op.Size)
		if err != nil {
			return err
		}
		return r.track(op.ID, p, op.Size)

	case OpRealloc:
		r.res.Reallocs++
		old, ok := r.live[op.ID]
		if ok {
			if err := r.verify(op.ID, old, old.size); err != nil {
				return err
			}
			r.untrack(op.ID, old)
		}
		p, err := r.a.Realloc(old.ptr, op.Size)
		if err != nil {
			if ok {
				r.live[op.ID] = old
				r.cur += uint64(old.size)
			}
			return err
		}
		nr := liveRange{ptr: p, size: op.Size}
		if ok && p != alloc.Nil {
			if err := r.verify(op.ID, nr, min(old.size, op.Size)); err != nil {
				return err
			}
		}
		r.log.Debug("realloc", "id", op.ID, "from", old.ptr, "to", p, "size", op.Size)
		return r.track(op.ID, p, op.Size)

	case OpFree:
		r.res.Frees++
		old, ok := r.live[op.ID]
		if !ok {
			r.a.Free(alloc.Nil)
			return nil
		}
		if err := r.verify(op.ID, old, old.size); err != nil {
			return err
		}
		r.release(op.ID, old)
		return nil
	}
	return fmt.Errorf("%w: op %s", ErrSyntax, op.Kind)
}

func (r *replayer) release(id int, lr liveRange) {
	r.untrack(id, lr)
	r.a.Free(lr.ptr)
}

func (r *replayer) untrack(id int, lr liveRange) {
	delete(r.live, id)
	r.cur -= uint64(lr.size)
}

// track checks placement of a new payload, writes its pattern and records it.
func (r *replayer) track(id int, p alloc.Ptr, size uint32) error {
	if p == alloc.Nil {
		return nil
	}
	if !format.IsAligned(p) {
		return fmt.Errorf("%w: %d", ErrMisaligned, p)
	}
	if got := len(r.a.Payload(p)); got < int(size) {
		return fmt.Errorf("%w: payload %d holds %d bytes, asked for %d", ErrCorrupted, p, got, size)
	}
	for other, lr := range r.live {
		if p < lr.ptr+lr.size && lr.ptr < p+size {
			return fmt.Errorf("%w: id %d [%d,+%d) and id %d [%d,+%d)",
				ErrOverlap, id, p, size, other, lr.ptr, lr.size)
		}
	}

	payload := r.a.Payload(p)[:size]
	for i := range payload {
		payload[i] = pattern(id, i)
	}
	r.live[id] = liveRange{ptr: p, size: size}
	r.cur += uint64(size)
	r.res.PeakLive = max(r.res.PeakLive, r.cur)
	return nil
}

func (r *replayer) verify(id int, lr liveRange, n uint32) error {
	payload := r.a.Payload(lr.ptr)
	for i := range int(n) {
		if payload[i] != pattern(id, i) {
			return fmt.Errorf("%w: id %d at %d byte %d: got 0x%02x want 0x%02x",
				ErrCorrupted, id, lr.ptr, i, payload[i], pattern(id, i))
		}
	}
	return nil
}

func pattern(id, i int) byte {
	return byte(id*131 + i*7 + 1)
}
