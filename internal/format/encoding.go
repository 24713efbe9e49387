package format

import "encoding/binary"

// Arena words are little-endian regardless of host byte order so that a
// file-backed arena is portable between machines.

// PutU32 writes v at off in little-endian order.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+WordSize], v)
}

// ReadU32 reads the little-endian word at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+WordSize])
}

// HasWord reports whether a full word at off lies inside b.
func HasWord(b []byte, off int) bool {
	return off >= 0 && off+WordSize <= len(b)
}
