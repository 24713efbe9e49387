package dirty

// DirtyTracker is the minimal interface for recording modified byte ranges of
// an arena. The allocator reports every header, footer, link and directory
// word it writes; it never flushes anything itself.
type DirtyTracker interface {
	// Add marks [off, off+length) as dirty. off is relative to the arena start.
	Add(off, length int)
}
