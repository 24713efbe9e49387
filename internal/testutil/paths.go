package testutil

// Bundled trace paths relative to the repository root.
// These constants should be used instead of hardcoding paths in test files.
const (
	// TraceShort1 exercises first-fit reuse of freed 2 KiB and 4 KiB blocks.
	TraceShort1 = "heap/trace/testdata/short1.rep"

	// TraceShort2 exercises the four coalescing cases.
	TraceShort2 = "heap/trace/testdata/short2.rep"

	// TraceRealloc grows, shrinks and moves payloads.
	TraceRealloc = "heap/trace/testdata/realloc.rep"

	// TraceRandom is a seeded random workload over 400 ids.
	TraceRandom = "heap/trace/testdata/random.rep"
)

// Traces lists every bundled trace.
var Traces = []string{TraceShort1, TraceShort2, TraceRealloc, TraceRandom}
