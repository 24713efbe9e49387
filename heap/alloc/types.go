package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the arena offset of a block's payload.
type Ptr = uint32

// Nil is the null handle.
const Nil Ptr = format.NilPtr

// Options tunes diagnostics. The zero value is ready to use.
type Options struct {
	// Logger receives debug events. Nil selects the process logger, or a
	// stderr debug logger when HEAPKIT_LOG_ALLOC is set.
	Logger *slog.Logger

	// CheckEachOp runs the consistency checker after every Alloc, Free and
	// Realloc and logs the first violation.
	CheckEachOp bool
}
