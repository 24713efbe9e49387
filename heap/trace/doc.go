// Package trace reads allocator trace files and replays them against an
// Allocator while checking payload integrity.
//
// # File Format
//
//	<suggested heap size>   ignored
//	<number of ids>
//	<number of ops>
//	<weight>                ignored
//	a <id> <bytes>          allocate
//	r <id> <bytes>          resize
//	f <id>                  release
//
// Blank lines and lines starting with '#' are skipped. An id names one live
// block at a time; allocating an id again after releasing it is allowed.
//
// # Replay
//
// Replay fills each payload with a pattern derived from its id, verifies the
// pattern before every release and after every resize (up to the smaller of
// the two sizes), rejects misaligned or overlapping payloads, and optionally
// runs the heap checker after every op.
package trace
