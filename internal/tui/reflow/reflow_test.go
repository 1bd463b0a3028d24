package reflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/mattn/go-runewidth"
)

func TestWrapBreaksOnWordBoundaries(t *testing.T) {
	out := Wrap("the quick brown fox jumps over the lazy dog", 10)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 10)
	}
	assert.Contains(t, out, "quick")
	assert.Contains(t, out, "the lazy\ndog")
}

func TestWrapPreservesExistingNewlines(t *testing.T) {
	out := Wrap("line one\nline two", 80)
	assert.Equal(t, "line one\nline two", out)
}

func TestWrapHardBreaksLongToken(t *testing.T) {
	long := strings.Repeat("a", 30)
	out := Wrap(long, 10)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 10)
	}
}

func TestWrapWideRunes(t *testing.T) {
	out := Wrap("你好世界你好世界你好世界", 10)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 10)
	}
}
