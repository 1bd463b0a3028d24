package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusShimmerDefaultsInterval(t *testing.T) {
	s := NewStatusShimmer(0)
	assert.Greater(t, s.Interval(), time.Duration(0))

	s2 := NewStatusShimmer(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, s2.Interval())
}

func TestStatusShimmerViewEmptyText(t *testing.T) {
	s := NewStatusShimmer(10 * time.Millisecond)
	assert.Equal(t, "", s.View(""))
}

func TestStatusShimmerViewPreservesCharacters(t *testing.T) {
	s := NewStatusShimmer(10 * time.Millisecond)
	out := s.View("Thinking")
	for _, r := range "Thinking" {
		assert.Contains(t, out, string(r))
	}
}

func TestStatusShimmerAdvanceWrapsFrame(t *testing.T) {
	s := NewStatusShimmer(10 * time.Millisecond)
	for i := 0; i < len(shimmerPalette); i++ {
		s.Advance()
	}
	assert.Equal(t, 0, s.frame)
}
