package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextlevelbuilder/vtgo/internal/tui/reflow"
)

// modalProgram adapts a Modal to tea.Model so it can be driven standalone
// by tea.NewProgram, the same way cmd/ui runs its input editor and
// spinner as their own programs.
type modalProgram struct {
	modal Modal
	width int
}

func (p modalProgram) Init() tea.Cmd { return nil }

func (p modalProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		p.width = sizeMsg.Width
	}
	next, cmd := p.modal.Update(msg)
	p.modal = next
	if p.modal == nil || p.modal.Done() {
		return p, tea.Quit
	}
	return p, cmd
}

func (p modalProgram) View() string {
	return p.modal.View(p.width)
}

// RunModal drives m to completion on its own full-screen bubbletea
// program and returns the same modal so the caller can read its Outcome.
func RunModal(m Modal) (Modal, error) {
	p := modalProgram{modal: m, width: reflow.TerminalWidth()}
	finalModel, err := tea.NewProgram(p).Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(modalProgram).modal, nil
}
