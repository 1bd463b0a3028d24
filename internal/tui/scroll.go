// Package tui implements the Session TUI's non-rendering core: the scroll
// manager, the modal stack, and the status shimmer that the session's
// bubbletea program composes around the transcript/input editor in
// cmd/ui. See internal/tui/reflow for line wrapping and
// internal/tui/markdown for plan rendering.
package tui

// ScrollManager tracks (offset, total_rows, viewport_rows) for the
// transcript view. offset=0 means pinned to the newest row; offset=max
// means scrolled to the top of the buffer. The invariant
// offset <= max(0, total_rows-viewport_rows) holds after every mutation.
type ScrollManager struct {
	offset       int
	totalRows    int
	viewportRows int
}

// NewScrollManager starts pinned to the bottom.
func NewScrollManager(viewportRows int) *ScrollManager {
	if viewportRows < 1 {
		viewportRows = 1
	}
	return &ScrollManager{viewportRows: viewportRows}
}

func (s *ScrollManager) maxOffset() int {
	if s.totalRows > s.viewportRows {
		return s.totalRows - s.viewportRows
	}
	return 0
}

func (s *ScrollManager) clamp() {
	if s.offset < 0 {
		s.offset = 0
	}
	if m := s.maxOffset(); s.offset > m {
		s.offset = m
	}
}

// Offset returns the current scroll offset.
func (s *ScrollManager) Offset() int { return s.offset }

// TotalRows returns the last total row count set via SetTotalRows.
func (s *ScrollManager) TotalRows() int { return s.totalRows }

// ViewportRows returns the visible row count.
func (s *ScrollManager) ViewportRows() int { return s.viewportRows }

// Pinned reports whether the view is pinned to the newest row (offset 0).
func (s *ScrollManager) Pinned() bool { return s.offset == 0 }

// SetViewportRows updates the viewport height (e.g. on terminal resize)
// and re-clamps the offset.
func (s *ScrollManager) SetViewportRows(rows int) {
	if rows < 1 {
		rows = 1
	}
	s.viewportRows = rows
	s.clamp()
}

// SetTotalRows updates the content length after transcript changes. If the
// user was pinned to the bottom, the view stays pinned (offset 0). If the
// user had scrolled up, the currently visible top line is preserved by
// shifting the offset by the same amount the content grew, rather than
// snapping back to the bottom out from under them.
func (s *ScrollManager) SetTotalRows(total int) {
	if total < 0 {
		total = 0
	}
	wasPinned := s.Pinned()
	delta := total - s.totalRows
	s.totalRows = total
	if wasPinned {
		s.offset = 0
	} else if delta > 0 {
		s.offset += delta
	}
	s.clamp()
}

// LineUp scrolls toward older content by n rows.
func (s *ScrollManager) LineUp(n int) {
	s.offset += n
	s.clamp()
}

// LineDown scrolls toward newer content by n rows.
func (s *ScrollManager) LineDown(n int) {
	s.offset -= n
	s.clamp()
}

// PageUp scrolls up a full viewport.
func (s *ScrollManager) PageUp() { s.LineUp(s.viewportRows) }

// PageDown scrolls down a full viewport.
func (s *ScrollManager) PageDown() { s.LineDown(s.viewportRows) }

// Home scrolls to the oldest content.
func (s *ScrollManager) Home() {
	s.offset = s.maxOffset()
}

// End scrolls to the newest content (pins to bottom).
func (s *ScrollManager) End() {
	s.offset = 0
}
