// Package dirty tracks which byte ranges of an arena were modified and flushes
// them when the arena is a shared file mapping.
//
// The allocator only ever calls Add. Ranges are kept raw until they are
// needed, then page-aligned, sorted and merged:
//
//	Add(100, 4)      -> [0, 4096)
//	Add(4000, 200)   -> [0, 8192)   (spans two pages, merged with the first)
//	Add(20000, 8)    -> [16384, 20480)
//
// Flush msyncs each merged range on Linux, the whole mapping on macOS (msync
// there requires the original mapping address), and is a no-op on platforms
// where arenas are plain buffers.
//
// Usage:
//
//	t := dirty.NewTracker()
//	a, _ := alloc.New(fileArena, t, nil, nil)
//	// ... allocate / free ...
//	err := t.Flush(ctx, fileArena.Bytes())
package dirty
