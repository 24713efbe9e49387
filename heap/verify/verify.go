package verify

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/heap/walker"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte, layout block.Layout, table *sizeclass.Table) error {
	if err := Sentinels(data, layout); err != nil {
		return err
	}
	if err := BlockChain(data, layout); err != nil {
		return err
	}
	return FreeLists(data, layout, table)
}

// Sentinels validates the arena length and the prologue and epilogue tags.
func Sentinels(data []byte, layout block.Layout) error {
	if len(data) < layout.InitialSize() {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("arena too small: %d bytes (need %d)", len(data), layout.InitialSize()),
			Offset:  -1,
		}
	}
	if !format.IsAligned(uint32(len(data))) {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("arena length %d not %d-aligned", len(data), format.Alignment),
			Offset:  -1,
		}
	}

	pro := block.At(data, layout.Prologue(), nil)
	if pro.Header() != format.PackHeader(format.PrologueSize, true, true) {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad prologue header 0x%08X", pro.Header()),
			Offset:  pro.HeaderOff(),
		}
	}
	if pro.Footer() != format.PackFooter(format.PrologueSize, true) {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad prologue footer 0x%08X", pro.Footer()),
			Offset:  pro.FooterOff(),
		}
	}

	epi := layout.Epilogue(data, nil)
	if !epi.IsEpilogue() || !epi.IsAllocated() {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("last word 0x%08X is not an allocated zero-size epilogue", epi.Header()),
			Offset:  epi.HeaderOff(),
		}
	}
	return nil
}

// BlockChain walks the heap in address order and validates boundary tags,
// eager coalescing and the prev-allocated bits.
func BlockChain(data []byte, layout block.Layout) error {
	it := walker.NewIterator(data, layout)
	prevAlloc := true // the prologue
	for {
		off := it.Offset()
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &ValidationError{Type: "BlockChain", Message: err.Error(), Offset: int(off)}
		}

		if b.PrevAllocated() != prevAlloc {
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("prev-allocated bit is %v, previous block allocated=%v", b.PrevAllocated(), prevAlloc),
				Offset:  int(b.Ptr()),
			}
		}

		alloc := b.IsAllocated()
		if !alloc {
			if !prevAlloc {
				return &ValidationError{
					Type:    "BlockChain",
					Message: "two adjacent free blocks",
					Offset:  int(b.Ptr()),
				}
			}
			ftr := b.Footer()
			if format.TagSize(ftr) != b.Size() || format.TagAlloc(ftr) {
				return &ValidationError{
					Type: "BlockChain",
					Message: fmt.Sprintf("footer (size=%d alloc=%v) does not match header (size=%d alloc=false)",
						format.TagSize(ftr), format.TagAlloc(ftr), b.Size()),
					Offset: b.FooterOff(),
				}
			}
		}
		prevAlloc = alloc
	}

	end := it.Offset()
	if int(end) != len(data) {
		return &ValidationError{
			Type:    "BlockChain",
			Message: fmt.Sprintf("epilogue found at %d, arena ends at %d", end, len(data)),
			Offset:  int(end),
		}
	}
	if epi := block.At(data, end, nil); epi.PrevAllocated() != prevAlloc {
		return &ValidationError{
			Type:    "BlockChain",
			Message: fmt.Sprintf("epilogue prev-allocated bit is %v, last block allocated=%v", epi.PrevAllocated(), prevAlloc),
			Offset:  int(end),
		}
	}
	return nil
}

// FreeLists validates every class list and cross-checks it against the free
// blocks found by an address-order walk.
func FreeLists(data []byte, layout block.Layout, table *sizeclass.Table) error {
	if table.NumClasses() != layout.NumClasses {
		return &ValidationError{
			Type:    "FreeLists",
			Message: fmt.Sprintf("table has %d classes, layout %d", table.NumClasses(), layout.NumClasses),
			Offset:  -1,
		}
	}

	free := walker.NewBitmap(uint32(len(data)))
	it := walker.NewIterator(data, layout)
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &ValidationError{Type: "FreeLists", Message: err.Error(), Offset: int(it.Offset())}
		}
		if !b.IsAllocated() {
			free.Set(b.Ptr())
		}
	}

	listed := walker.NewBitmap(uint32(len(data)))
	for class := range layout.NumClasses {
		if err := freeList(data, layout, table, class, free, listed); err != nil {
			return err
		}
	}

	it = walker.NewIterator(data, layout)
	for {
		b, err := it.Next()
		if err != nil {
			break
		}
		if !b.IsAllocated() && !listed.IsSet(b.Ptr()) {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("free block of size %d is in no list (expected class %d)", b.Size(), table.ClassFor(b.Size())),
				Offset:  int(b.Ptr()),
			}
		}
	}
	return nil
}

func freeList(data []byte, layout block.Layout, table *sizeclass.Table, class int, free, listed *walker.Bitmap) error {
	var pred uint32
	for p := layout.Head(data, class); p != format.NilPtr; {
		if p < layout.FirstPtr() || int(p) >= len(data) || !format.IsAligned(p) {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("class %d: link %d outside the block area", class, p),
				Offset:  linkOwner(layout, class, pred),
			}
		}
		if !free.IsSet(p) {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("class %d: listed block is not a free block", class),
				Offset:  int(p),
			}
		}
		if listed.TestAndSet(p) {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("class %d: block reached twice", class),
				Offset:  int(p),
			}
		}

		b := block.At(data, p, nil)
		if want := table.ClassFor(b.Size()); want != class {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("block of size %d listed in class %d, belongs in class %d", b.Size(), class, want),
				Offset:  int(p),
			}
		}
		if b.Pred() != pred {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("class %d: pred link %d, expected %d", class, b.Pred(), pred),
				Offset:  int(p),
			}
		}
		if pred != format.NilPtr && p <= pred {
			return &ValidationError{
				Type:    "FreeLists",
				Message: fmt.Sprintf("class %d: address order broken after %d", class, pred),
				Offset:  int(p),
			}
		}
		pred = p
		p = b.Succ()
	}
	return nil
}

// linkOwner returns the offset of the word that held a bad link: the
// directory slot for a head, otherwise the predecessor block.
func linkOwner(layout block.Layout, class int, pred uint32) int {
	if pred == format.NilPtr {
		return layout.SlotOff(class)
	}
	return int(pred)
}
