package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SecurePromptOutcome is the result of a closed SecurePromptModal.
type SecurePromptOutcome struct {
	Value    string
	Canceled bool
}

// SecurePromptModal collects a single line of masked input (API keys,
// passwords) for tools like credential setup.
type SecurePromptModal struct {
	label string
	input textinput.Model

	outcome *SecurePromptOutcome
}

// NewSecurePromptModal builds a masked single-line prompt.
func NewSecurePromptModal(label string) *SecurePromptModal {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()
	return &SecurePromptModal{label: label, input: ti}
}

func (m *SecurePromptModal) Kind() ModalKind { return ModalSecurePrompt }
func (m *SecurePromptModal) Done() bool      { return m.outcome != nil }

func (m *SecurePromptModal) Outcome() SecurePromptOutcome {
	if m.outcome == nil {
		return SecurePromptOutcome{Canceled: true}
	}
	return *m.outcome
}

func (m *SecurePromptModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.outcome = &SecurePromptOutcome{Canceled: true}
			return m, nil
		case tea.KeyEnter:
			m.outcome = &SecurePromptOutcome{Value: m.input.Value()}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *SecurePromptModal) View(viewportWidth int) string {
	width := modalWidth(viewportWidth, 24, 60)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(width).
		Padding(0, 1)
	return border.Render(lipgloss.NewStyle().Bold(true).Render(m.label) + "\n" + m.input.View())
}
