//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping: macOS msync requires the original
// mapping address, and the kernel only writes pages that are actually dirty.
func (t *Tracker) flushRanges(_ context.Context, data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
