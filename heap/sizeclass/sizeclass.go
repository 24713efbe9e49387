// Package sizeclass defines the segregated size-class directory: a fixed
// number of list heads, each owning the free blocks whose size falls in one
// power-of-two range.
package sizeclass

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/joshuapare/heapkit/internal/format"
)

// Config defines the size class strategy and the arena growth chunk.
// Different configurations trade directory size against per-class list length.
type Config struct {
	// Name for this configuration (for reports and the CLI).
	Name string

	// NumClasses is the number of list heads in the directory.
	NumClasses int

	// LargestPow2 is log2 of the smallest size that lands in the last,
	// open-ended class. The first class covers sizes up to
	// 2^(LargestPow2-NumClasses+2).
	LargestPow2 uint

	// ChunkSize is the minimum number of bytes requested from the arena
	// whenever it has to grow.
	ChunkSize uint32
}

// Predefined configurations.
var (
	// ConfigDefault reproduces the classic lab allocator: 14 classes,
	// first class up to 64 bytes, last class from 256 KiB, 256-byte chunks.
	ConfigDefault = Config{
		Name:        "default",
		NumClasses:  14,
		LargestPow2: 18,
		ChunkSize:   1 << 8,
	}

	// ConfigCompact keeps only 8 classes (64 B .. 4 KiB); long lists, small directory.
	ConfigCompact = Config{
		Name:        "compact",
		NumClasses:  8,
		LargestPow2: 12,
		ChunkSize:   1 << 8,
	}

	// ConfigWide spreads 20 classes up to 16 MiB and grows in 4 KiB chunks.
	ConfigWide = Config{
		Name:        "wide",
		NumClasses:  20,
		LargestPow2: 24,
		ChunkSize:   1 << 12,
	}

	// DefaultConfig is used when no configuration is supplied.
	DefaultConfig = ConfigDefault
)

// Configs lists the predefined configurations in display order.
func Configs() []Config {
	return []Config{ConfigDefault, ConfigCompact, ConfigWide}
}

// ConfigByName looks up a predefined configuration.
func ConfigByName(name string) (Config, bool) {
	for _, c := range Configs() {
		if c.Name == name {
			return c, true
		}
	}
	return Config{}, false
}

// Validate reports whether the configuration describes a usable directory.
func (c Config) Validate() error {
	if c.NumClasses < 2 {
		return fmt.Errorf("sizeclass: %q needs at least 2 classes, got %d", c.Name, c.NumClasses)
	}
	if c.LargestPow2 > 31 {
		return fmt.Errorf("sizeclass: %q largest power %d exceeds header width", c.Name, c.LargestPow2)
	}
	if int(c.LargestPow2)-c.NumClasses+2 < bits.Len32(format.MinBlockSize)-1 {
		return fmt.Errorf(
			"sizeclass: %q first class bound 2^%d is below the minimum block size %d",
			c.Name, int(c.LargestPow2)-c.NumClasses+2, format.MinBlockSize,
		)
	}
	if c.ChunkSize == 0 || !format.IsAligned(c.ChunkSize) {
		return fmt.Errorf("sizeclass: %q chunk size %d must be a positive multiple of %d",
			c.Name, c.ChunkSize, format.Alignment)
	}
	return nil
}

// Table is the computed directory for a Config.
type Table struct {
	config   Config
	k0       uint   // log2 of the first class's upper bound
	smallest uint32 // 2^k0
	largest  uint32 // 2^LargestPow2
}

// NewTable computes the class boundaries for config.
func NewTable(config Config) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	k0 := config.LargestPow2 - uint(config.NumClasses) + 2
	return &Table{
		config:   config,
		k0:       k0,
		smallest: 1 << k0,
		largest:  1 << config.LargestPow2,
	}, nil
}

// MustTable is NewTable for the predefined configurations; it panics on an
// invalid config.
func MustTable(config Config) *Table {
	t, err := NewTable(config)
	if err != nil {
		panic(err)
	}
	return t
}

// ClassFor returns the directory slot for a block of the given size.
//
//	size <= 2^k0                    -> 0
//	2^(k0+i-1) < size <= 2^(k0+i)   -> i
//	size >= 2^LargestPow2           -> NumClasses-1
func (t *Table) ClassFor(size uint32) int {
	switch {
	case size <= t.smallest:
		return 0
	case size >= t.largest:
		return t.config.NumClasses - 1
	default:
		return bits.Len32(size-1) - int(t.k0)
	}
}

// Bounds returns the inclusive size range owned by class i.
func (t *Table) Bounds(i int) (lo, hi uint32) {
	last := t.config.NumClasses - 1
	switch {
	case i <= 0:
		return format.MinBlockSize, t.smallest
	case i >= last:
		return t.largest, math.MaxUint32 &^ format.AlignmentMask
	case i == last-1:
		return (1 << (t.k0 + uint(i) - 1)) + 1, t.largest - 1
	default:
		return (1 << (t.k0 + uint(i) - 1)) + 1, 1 << (t.k0 + uint(i))
	}
}

// NumClasses returns the number of directory slots.
func (t *Table) NumClasses() int {
	return t.config.NumClasses
}

// ChunkSize returns the minimum arena growth request.
func (t *Table) ChunkSize() uint32 {
	return t.config.ChunkSize
}

// Config returns the configuration the table was built from.
func (t *Table) Config() Config {
	return t.config
}

// String returns the configuration name.
func (t *Table) String() string {
	return t.config.Name
}
