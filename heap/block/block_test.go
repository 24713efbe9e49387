package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

type recordingTracker struct {
	offs []int
}

func (r *recordingTracker) Add(off, length int) {
	for i := 0; i < length; i += format.WordSize {
		r.offs = append(r.offs, off+i)
	}
}

func newHeap(t *testing.T, numClasses, extra int) (Layout, []byte) {
	t.Helper()
	l := Layout{NumClasses: numClasses}
	buf := make([]byte, l.InitialSize()+extra)
	l.Format(buf[:l.InitialSize()], nil)
	return l, buf
}

func TestLayout_Offsets(t *testing.T) {
	cases := []struct {
		classes  int
		prologue int
		first    uint32
	}{
		{14, 60, 72},
		{15, 60, 72},
		{8, 36, 48},
		{20, 84, 96},
	}
	for _, tc := range cases {
		l := Layout{NumClasses: tc.classes}
		assert.Equal(t, tc.prologue, l.PrologueHeader(), "classes=%d", tc.classes)
		assert.Equal(t, tc.first, l.FirstPtr(), "classes=%d", tc.classes)
		assert.Zero(t, l.FirstPtr()%format.Alignment, "first payload must be aligned")
		assert.Equal(t, int(tc.first), l.InitialSize())
	}
}

func TestLayout_FormatWritesSentinels(t *testing.T) {
	l, buf := newHeap(t, 14, 0)

	for i := range l.NumClasses {
		require.Zero(t, l.Head(buf, i))
	}

	pro := At(buf, l.Prologue(), nil)
	require.Equal(t, uint32(format.PrologueSize), pro.Size())
	require.True(t, pro.IsAllocated())
	require.True(t, pro.PrevAllocated())
	require.Equal(t, format.PackFooter(format.PrologueSize, true), pro.Footer())

	epi := l.Epilogue(buf, nil)
	require.Equal(t, l.FirstPtr(), epi.Ptr())
	require.True(t, epi.IsEpilogue())
	require.True(t, epi.IsAllocated())
	require.Equal(t, epi.Ptr(), pro.Next().Ptr())
}

func TestBlock_FreeBoundaryTags(t *testing.T) {
	l, buf := newHeap(t, 14, 64)
	b := At(buf, l.FirstPtr(), nil)

	b.SetFree(48, true)
	require.Equal(t, uint32(48), b.Size())
	require.False(t, b.IsAllocated())
	require.True(t, b.PrevAllocated())
	require.Equal(t, format.TagSize(b.Header()), format.TagSize(b.Footer()))
	require.Equal(t, format.TagAlloc(b.Header()), format.TagAlloc(b.Footer()))

	next := b.Next()
	require.Equal(t, b.Ptr()+48, next.Ptr())

	next.SetHeader(16, false, true)
	require.Equal(t, b.Ptr(), next.Prev().Ptr(), "Prev must follow the footer back")
}

func TestBlock_SetPrevAllocatedKeepsFields(t *testing.T) {
	l, buf := newHeap(t, 14, 32)
	b := At(buf, l.FirstPtr(), nil)
	b.SetHeader(24, true, true)

	b.SetPrevAllocated(false)
	require.False(t, b.PrevAllocated())
	require.True(t, b.IsAllocated())
	require.Equal(t, uint32(24), b.Size())

	b.SetPrevAllocated(true)
	require.True(t, b.PrevAllocated())
}

func TestBlock_Links(t *testing.T) {
	l, buf := newHeap(t, 14, 64)
	b := At(buf, l.FirstPtr(), nil)
	b.SetFree(32, true)
	b.SetPred(0)
	b.SetSucc(1234)
	require.Zero(t, b.Pred())
	require.Equal(t, uint32(1234), b.Succ())
	require.Equal(t, uint32(32), b.Size(), "links must not touch the header")
}

func TestBlock_PayloadStopsAtNextHeader(t *testing.T) {
	l, buf := newHeap(t, 14, 64)
	b := At(buf, l.FirstPtr(), nil)
	b.SetHeader(40, true, true)
	b.Next().SetHeader(24, true, true)

	p := b.Payload()
	require.Len(t, p, 36)
	require.Equal(t, 36, cap(p), "payload must not be appendable into the next header")
	for i := range p {
		p[i] = 0xAA
	}
	require.Equal(t, uint32(24), b.Next().Size())
}

func TestBlock_DirtyTracking(t *testing.T) {
	l, buf := newHeap(t, 14, 64)
	rec := &recordingTracker{}
	b := At(buf, l.FirstPtr(), rec)

	b.SetFree(32, true)
	b.SetSucc(0)
	require.Equal(t, []int{int(l.FirstPtr()) - 4, int(l.FirstPtr()) + 24, int(l.FirstPtr()) + 4}, rec.offs)

	rec.offs = nil
	b.SetPrevAllocated(true) // already set: no write
	require.Empty(t, rec.offs)
}

func TestChecked(t *testing.T) {
	l, buf := newHeap(t, 14, 32)
	b := At(buf, l.FirstPtr(), nil)
	b.SetFree(32, true)

	_, err := Checked(buf, l.FirstPtr())
	require.NoError(t, err)

	b.SetFree(32, true)
	format.PutU32(buf, b.HeaderOff(), format.PackHeader(4096, true, false))
	_, err = Checked(buf, l.FirstPtr())
	require.ErrorIs(t, err, format.ErrTruncated)

	_, err = Checked(buf, uint32(len(buf)+8))
	require.ErrorIs(t, err, format.ErrTruncated)
}
