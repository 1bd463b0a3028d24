package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// shimmerPalette sweeps brightness across the status text, frame by
// frame, the way the teacher's spinner.go cycles spinner glyphs but
// applied to the label itself instead of a separate glyph.
var shimmerPalette = []string{"240", "245", "250", "255", "250", "245"}

// StatusShimmer animates the turn-in-progress status line (§4.7: "status
// shimmer"). Advance should be called on a timer; View renders the
// current frame.
type StatusShimmer struct {
	frame    int
	interval time.Duration
}

// NewStatusShimmer returns a shimmer advancing once per interval.
func NewStatusShimmer(interval time.Duration) *StatusShimmer {
	if interval <= 0 {
		interval = 120 * time.Millisecond
	}
	return &StatusShimmer{interval: interval}
}

// Interval returns the configured tick interval.
func (s *StatusShimmer) Interval() time.Duration { return s.interval }

// Advance moves to the next frame.
func (s *StatusShimmer) Advance() {
	s.frame = (s.frame + 1) % len(shimmerPalette)
}

// View renders text with the current frame's brightness, sweeping one
// character position per frame so the highlight appears to travel across
// the label.
func (s *StatusShimmer) View(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	highlight := s.frame % len(runes)

	var b strings.Builder
	for i, r := range runes {
		dist := i - highlight
		if dist < 0 {
			dist = -dist
		}
		color := shimmerPalette[min(dist, len(shimmerPalette)-1)]
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
	}
	return b.String()
}
