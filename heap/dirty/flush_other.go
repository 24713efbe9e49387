//go:build !linux && !darwin

package dirty

import "context"

// flushRanges is a no-op: on these platforms file arenas are plain buffers
// written back on Close.
func (t *Tracker) flushRanges(_ context.Context, _ []byte) error {
	return nil
}
