package arena

import "fmt"

// Mem is a slice-backed arena capped at a fixed limit.
type Mem struct {
	data  []byte
	limit int
}

// NewMem creates an empty arena. A limit <= 0 selects DefaultLimit.
func NewMem(limit int) *Mem {
	return &Mem{limit: effectiveLimit(limit)}
}

// Grow implements Arena.
func (m *Mem) Grow(n int) (int, error) {
	base := len(m.data)
	if n < 0 {
		return base, fmt.Errorf("%w: %d bytes", ErrInvalidGrow, n)
	}
	if n > m.limit-base {
		return base, fmt.Errorf("grow %d bytes at %d (limit %d): %w", n, base, m.limit, ErrExhausted)
	}
	m.data = append(m.data, make([]byte, n)...)
	return base, nil
}

// Bytes implements Arena.
func (m *Mem) Bytes() []byte { return m.data }

// Len implements Arena.
func (m *Mem) Len() int { return len(m.data) }

// Limit returns the maximum arena length.
func (m *Mem) Limit() int { return m.limit }
