package testutil

import (
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Fill writes a pattern derived from seed into the first n payload bytes of p.
func Fill(t *testing.T, a *alloc.Allocator, p alloc.Ptr, seed byte, n int) {
	t.Helper()
	payload := a.Payload(p)
	if len(payload) < n {
		t.Fatalf("payload at %d holds %d bytes, need %d", p, len(payload), n)
	}
	for i := range n {
		payload[i] = seed + byte(i)
	}
}

// RequirePattern fails the test unless the first n payload bytes of p still
// hold the pattern written by Fill.
func RequirePattern(t *testing.T, a *alloc.Allocator, p alloc.Ptr, seed byte, n int) {
	t.Helper()
	payload := a.Payload(p)
	if len(payload) < n {
		t.Fatalf("payload at %d holds %d bytes, need %d", p, len(payload), n)
	}
	for i := range n {
		if payload[i] != seed+byte(i) {
			t.Fatalf("payload at %d byte %d: got 0x%02x want 0x%02x", p, i, payload[i], seed+byte(i))
		}
	}
}
