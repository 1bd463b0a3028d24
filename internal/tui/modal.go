package tui

import tea "github.com/charmbracelet/bubbletea"

// ModalKind is one of the session TUI's seven modal types. At most one
// modal is open at a time.
type ModalKind string

const (
	ModalList             ModalKind = "list"
	ModalWizard           ModalKind = "wizard"
	ModalSecurePrompt     ModalKind = "secure_prompt"
	ModalPlanConfirmation ModalKind = "plan_confirmation"
	ModalFilePalette      ModalKind = "file_palette"
	ModalSlashPalette     ModalKind = "slash_palette"
	ModalConfigPalette    ModalKind = "config_palette"
)

// Modal is any of the session TUI's overlay prompts. While a modal is
// open, the session routes all key input to it instead of the transcript
// or input editor.
type Modal interface {
	Kind() ModalKind
	Update(msg tea.Msg) (Modal, tea.Cmd)
	View(width int) string
	// Done reports whether the modal has produced a final outcome and
	// should be popped off the stack.
	Done() bool
}

// ModalStack holds at most one open modal (§4.7: "a stack of at most one
// modal"). Push replaces whatever is currently open rather than layering,
// since the spec's modals are mutually exclusive by construction; the
// stack still tracks whether one is open so callers can swallow global
// keys while it is.
type ModalStack struct {
	current Modal
}

// Push opens m, discarding any modal already open.
func (s *ModalStack) Push(m Modal) { s.current = m }

// Pop closes the current modal.
func (s *ModalStack) Pop() { s.current = nil }

// Current returns the open modal, or nil.
func (s *ModalStack) Current() Modal { return s.current }

// IsOpen reports whether a modal is open.
func (s *ModalStack) IsOpen() bool { return s.current != nil }

// Update routes msg to the open modal and pops it once it reports Done.
func (s *ModalStack) Update(msg tea.Msg) tea.Cmd {
	if s.current == nil {
		return nil
	}
	next, cmd := s.current.Update(msg)
	s.current = next
	if s.current != nil && s.current.Done() {
		s.current = nil
	}
	return cmd
}

// View renders the open modal, or "" if none is open.
func (s *ModalStack) View(width int) string {
	if s.current == nil {
		return ""
	}
	return s.current.View(width)
}

// modalWidth implements §4.7's list-modal width ratio: ~0.6 of the
// viewport width, clamped to [min, max].
func modalWidth(viewportWidth, min, max int) int {
	w := viewportWidth * 6 / 10
	if w < min {
		w = min
	}
	if w > max {
		w = max
	}
	return w
}
