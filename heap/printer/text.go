package printer

import (
	"fmt"
	"strings"
)

func (p *Printer) printText(info heapInfo) error {
	w := p.writer
	s := info.Summary
	if _, err := fmt.Fprintf(w, "heap %s: %d bytes, %d blocks (%d allocated, %d free), utilization %.1f%%\n",
		info.Config, info.ArenaSize, s.Blocks, s.AllocatedBlocks, s.FreeBlocks, 100*s.Utilization); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%10s %10s  %-5s  %s\n", "PTR", "SIZE", "STATE", "PREV"); err != nil {
		return err
	}
	for _, b := range info.Blocks {
		state := "free"
		if b.Allocated {
			state = "alloc"
		}
		prev := 0
		if b.PrevAlloc {
			prev = 1
		}
		line := fmt.Sprintf("%10d %10d  %-5s  %d", b.Ptr, b.Size, state, prev)
		if b.Payload != "" {
			line += "  " + b.Payload
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if info.Error != "" {
		if _, err := fmt.Fprintf(w, "walk stopped: %s\n", info.Error); err != nil {
			return err
		}
	}

	if info.FreeLists == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, "free lists:"); err != nil {
		return err
	}
	for _, c := range info.FreeLists {
		if len(c.Blocks) == 0 {
			continue
		}
		ptrs := make([]string, len(c.Blocks))
		for i, ptr := range c.Blocks {
			ptrs[i] = fmt.Sprint(ptr)
		}
		if _, err := fmt.Fprintf(w, "  class %2d [%d..%d]: %s\n", c.Class, c.Min, c.Max, strings.Join(ptrs, " ")); err != nil {
			return err
		}
	}
	return nil
}
