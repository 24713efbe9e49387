// Package printer renders a heap arena as a block map followed by the free
// lists, in text or JSON.
package printer

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/heap/walker"
	"github.com/joshuapare/heapkit/internal/format"
)

// DefaultMaxPayloadBytes is the default payload preview length.
const DefaultMaxPayloadBytes = 0

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable table.
	FormatText Format = "text"

	// FormatJSON outputs one JSON document.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowFreeLists appends the per-class free lists.
	// Default: true
	ShowFreeLists bool

	// MaxPayloadBytes previews up to this many payload bytes of allocated
	// blocks in hex. 0 disables the preview.
	MaxPayloadBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		ShowFreeLists:   true,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// blockInfo is one row of the block map.
type blockInfo struct {
	Ptr       uint32 `json:"ptr"`
	Size      uint32 `json:"size"`
	Allocated bool   `json:"allocated"`
	PrevAlloc bool   `json:"prev_allocated"`
	Payload   string `json:"payload,omitempty"`
}

// classInfo is one free list.
type classInfo struct {
	Class  int      `json:"class"`
	Min    uint32   `json:"min"`
	Max    uint32   `json:"max"`
	Blocks []uint32 `json:"blocks"`
}

type heapInfo struct {
	Config    string      `json:"config"`
	ArenaSize int         `json:"arena_size"`
	Summary   summaryInfo `json:"summary"`
	Blocks    []blockInfo `json:"blocks"`
	FreeLists []classInfo `json:"free_lists,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type summaryInfo struct {
	Blocks          int     `json:"blocks"`
	AllocatedBlocks int     `json:"allocated_blocks"`
	FreeBlocks      int     `json:"free_blocks"`
	AllocatedBytes  uint64  `json:"allocated_bytes"`
	FreeBytes       uint64  `json:"free_bytes"`
	LargestFree     uint32  `json:"largest_free"`
	Utilization     float64 `json:"utilization"`
}

// Printer renders one heap.
type Printer struct {
	data   []byte
	layout block.Layout
	table  *sizeclass.Table
	writer io.Writer
	opts   Options
}

// New creates a printer over a heap arena.
func New(data []byte, layout block.Layout, table *sizeclass.Table, w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Printer{data: data, layout: layout, table: table, writer: w, opts: opts}
}

// Print renders the heap with the given options. A walk error is reported in
// the output and returned after everything readable has been printed.
func Print(w io.Writer, data []byte, layout block.Layout, table *sizeclass.Table, opts Options) error {
	return New(data, layout, table, w, opts).Print()
}

// Print renders the heap.
func (p *Printer) Print() error {
	info, walkErr := p.collect()
	var err error
	switch p.opts.Format {
	case FormatText:
		err = p.printText(info)
	case FormatJSON:
		err = p.printJSON(info)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
	if err != nil {
		return err
	}
	return walkErr
}

func (p *Printer) collect() (heapInfo, error) {
	info := heapInfo{Config: p.table.String(), ArenaSize: len(p.data)}

	var sum walker.Summary
	it := walker.NewIterator(p.data, p.layout)
	var walkErr error
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			walkErr = err
			info.Error = err.Error()
			break
		}
		bi := blockInfo{
			Ptr:       b.Ptr(),
			Size:      b.Size(),
			Allocated: b.IsAllocated(),
			PrevAlloc: b.PrevAllocated(),
		}
		sum.Blocks++
		if bi.Allocated {
			sum.AllocatedBlocks++
			sum.AllocatedBytes += uint64(bi.Size)
			if n := min(p.opts.MaxPayloadBytes, len(b.Payload())); n > 0 {
				bi.Payload = fmt.Sprintf("%x", b.Payload()[:n])
			}
		} else {
			sum.FreeBlocks++
			sum.FreeBytes += uint64(bi.Size)
			sum.LargestFree = max(sum.LargestFree, bi.Size)
		}
		info.Blocks = append(info.Blocks, bi)
	}
	sum.ArenaSize = len(p.data)
	info.Summary = summaryInfo{
		Blocks:          sum.Blocks,
		AllocatedBlocks: sum.AllocatedBlocks,
		FreeBlocks:      sum.FreeBlocks,
		AllocatedBytes:  sum.AllocatedBytes,
		FreeBytes:       sum.FreeBytes,
		LargestFree:     sum.LargestFree,
		Utilization:     sum.Utilization(),
	}

	if p.opts.ShowFreeLists {
		info.FreeLists = p.freeLists()
	}
	return info, walkErr
}

// freeLists follows every class list, stopping at the first out-of-range or
// repeated link so a corrupt heap still prints.
func (p *Printer) freeLists() []classInfo {
	seen := walker.NewBitmap(uint32(len(p.data)))
	out := make([]classInfo, 0, p.table.NumClasses())
	for class := range p.table.NumClasses() {
		lo, hi := p.table.Bounds(class)
		ci := classInfo{Class: class, Min: lo, Max: hi, Blocks: []uint32{}}
		for ptr := p.layout.Head(p.data, class); ptr != format.NilPtr; {
			if int(ptr)+format.SuccOffset+format.WordSize > len(p.data) || seen.TestAndSet(ptr) {
				break
			}
			ci.Blocks = append(ci.Blocks, ptr)
			ptr = block.At(p.data, ptr, nil).Succ()
		}
		out = append(out, ci)
	}
	return out
}
