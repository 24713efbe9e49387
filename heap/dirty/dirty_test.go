package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(100, 200)

	coalesced := tracker.CoalescedRanges()
	require.Len(t, coalesced, 1)
	require.Equal(t, int64(0), coalesced[0].Off)
	require.Equal(t, int64(4096), coalesced[0].Len)
}

func Test_DirtyTracker_ExtendsContiguousWrites(t *testing.T) {
	tracker := NewTracker()

	// header, pred, succ, footer of one block written in sequence
	tracker.Add(68, 4)
	tracker.Add(72, 4)
	tracker.Add(76, 4)
	tracker.Add(80, 4)

	require.Equal(t, 1, tracker.Len())
	require.Equal(t, []Range{{Off: 68, Len: 16}}, tracker.Ranges())
}

func Test_DirtyTracker_MergesAcrossPages(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(20000, 8)
	tracker.Add(100, 4)
	tracker.Add(4000, 200)

	coalesced := tracker.CoalescedRanges()
	require.Equal(t, []Range{
		{Off: 0, Len: 8192},
		{Off: 16384, Len: 4096},
	}, coalesced)
}

func Test_DirtyTracker_IgnoresEmpty(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(10, 0)
	tracker.Add(10, -4)
	require.Zero(t, tracker.Len())
	require.Nil(t, tracker.CoalescedRanges())
}

func Test_DirtyTracker_CompactsLongRuns(t *testing.T) {
	tracker := NewTracker()
	// One word per page, written backwards so nothing extends the last range.
	for i := compactThreshold * 2; i > 0; i-- {
		tracker.Add(i*standardPageSize, 4)
	}
	require.Less(t, tracker.Len(), compactThreshold)

	coalesced := tracker.CoalescedRanges()
	require.Equal(t, []Range{{
		Off: standardPageSize,
		Len: compactThreshold * 2 * standardPageSize,
	}}, coalesced)
}

func Test_DirtyTracker_CompactionBacksOff(t *testing.T) {
	tracker := NewTracker()
	// Every other page: merging cannot shrink the list.
	for i := compactThreshold * 2; i > 0; i-- {
		tracker.Add(i*2*standardPageSize, 4)
	}
	require.Equal(t, compactThreshold*2, tracker.Len())

	coalesced := tracker.CoalescedRanges()
	require.Len(t, coalesced, compactThreshold*2)
	for i := 1; i < len(coalesced); i++ {
		require.Less(t, coalesced[i-1].Off, coalesced[i].Off)
	}
}

func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(0, 4)
	tracker.Add(9000, 4)
	tracker.Reset()
	require.Zero(t, tracker.Len())
}

func Test_DirtyTracker_FlushNothing(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Flush(context.Background(), make([]byte, 16)))
}

func Test_DirtyTracker_FlushCancelled(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(0, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, make([]byte, 16))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, tracker.Len(), "cancelled flush must keep ranges")
}
