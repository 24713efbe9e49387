package sizeclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassFor_DefaultBoundaries(t *testing.T) {
	tbl := MustTable(ConfigDefault)
	require.Equal(t, 14, tbl.NumClasses())

	cases := []struct {
		size uint32
		want int
	}{
		{16, 0},
		{24, 0},
		{64, 0},
		{65, 1},
		{72, 1},
		{128, 1},
		{136, 2},
		{256, 2},
		{4096, 6},
		{4104, 7},
		{1<<17 + 8, 12},
		{1<<18 - 8, 12},
		{1 << 18, 13},
		{1 << 24, 13},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tbl.ClassFor(tc.size), "ClassFor(%d)", tc.size)
	}
}

func TestClassFor_MonotonicAndWithinBounds(t *testing.T) {
	for _, cfg := range Configs() {
		t.Run(cfg.Name, func(t *testing.T) {
			tbl := MustTable(cfg)
			prev := 0
			for size := uint32(16); size < 1<<(cfg.LargestPow2+1); size += 8 {
				c := tbl.ClassFor(size)
				require.GreaterOrEqual(t, c, prev, "class decreased at size %d", size)
				require.Less(t, c, tbl.NumClasses())
				lo, hi := tbl.Bounds(c)
				require.True(t, size >= lo && size <= hi,
					"size %d outside class %d bounds [%d,%d]", size, c, lo, hi)
				prev = c
				if size > 1<<12 {
					size += 1 << 10 // keep the large range quick
				}
			}
		})
	}
}

func TestBounds_Contiguous(t *testing.T) {
	tbl := MustTable(ConfigDefault)
	_, prevHi := tbl.Bounds(0)
	for i := 1; i < tbl.NumClasses(); i++ {
		lo, hi := tbl.Bounds(i)
		assert.Equal(t, prevHi+1, lo, "gap before class %d", i)
		assert.Greater(t, hi, lo)
		prevHi = hi
	}
}

func TestConfig_Validate(t *testing.T) {
	for _, cfg := range Configs() {
		require.NoError(t, cfg.Validate(), cfg.Name)
	}

	bad := []Config{
		{Name: "one-class", NumClasses: 1, LargestPow2: 10, ChunkSize: 256},
		{Name: "tiny-first", NumClasses: 14, LargestPow2: 14, ChunkSize: 256},
		{Name: "too-wide", NumClasses: 20, LargestPow2: 32, ChunkSize: 256},
		{Name: "no-chunk", NumClasses: 14, LargestPow2: 18, ChunkSize: 0},
		{Name: "odd-chunk", NumClasses: 14, LargestPow2: 18, ChunkSize: 100},
	}
	for _, cfg := range bad {
		_, err := NewTable(cfg)
		require.Error(t, err, cfg.Name)
	}
}

func TestConfigByName(t *testing.T) {
	cfg, ok := ConfigByName("wide")
	require.True(t, ok)
	require.Equal(t, ConfigWide, cfg)

	_, ok = ConfigByName("nope")
	require.False(t, ok)
}
