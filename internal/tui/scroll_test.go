package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollManagerStartsPinnedToBottom(t *testing.T) {
	s := NewScrollManager(10)
	assert.True(t, s.Pinned())
	assert.Equal(t, 0, s.Offset())
}

func TestScrollManagerEmptyTranscriptPageUpNoPanic(t *testing.T) {
	s := NewScrollManager(10)
	assert.NotPanics(t, func() { s.PageUp() })
	assert.Equal(t, 0, s.Offset())
	assert.True(t, s.Pinned())
}

func TestScrollManagerLineUpClampsToMaxOffset(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.LineUp(1000)
	assert.Equal(t, 15, s.Offset())
	assert.Equal(t, 15, s.maxOffset())
}

func TestScrollManagerLineDownClampsToZero(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.LineUp(3)
	s.LineDown(1000)
	assert.Equal(t, 0, s.Offset())
	assert.True(t, s.Pinned())
}

func TestScrollManagerHomeAndEnd(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.Home()
	assert.Equal(t, s.maxOffset(), s.Offset())
	s.End()
	assert.Equal(t, 0, s.Offset())
}

func TestScrollManagerPinnedFollowsGrowth(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.SetTotalRows(30)
	assert.True(t, s.Pinned())
	assert.Equal(t, 0, s.Offset())
}

func TestScrollManagerScrolledUpPreservesViewOnGrowth(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.PageUp()
	before := s.Offset()
	s.SetTotalRows(25)
	assert.Equal(t, before+5, s.Offset())
}

func TestScrollManagerResizeReclamps(t *testing.T) {
	s := NewScrollManager(5)
	s.SetTotalRows(20)
	s.Home()
	s.SetViewportRows(15)
	assert.LessOrEqual(t, s.Offset(), s.maxOffset())
}

func TestScrollManagerInvariantHoldsAcrossMutations(t *testing.T) {
	s := NewScrollManager(4)
	ops := []func(){
		func() { s.SetTotalRows(10) },
		func() { s.LineUp(2) },
		func() { s.SetTotalRows(3) },
		func() { s.PageDown() },
		func() { s.SetViewportRows(2) },
		func() { s.SetTotalRows(100) },
		func() { s.Home() },
	}
	for _, op := range ops {
		op()
		want := s.totalRows - s.viewportRows
		if want < 0 {
			want = 0
		}
		assert.LessOrEqual(t, s.Offset(), want)
		assert.GreaterOrEqual(t, s.Offset(), 0)
	}
}
