package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardStep is one page of a WizardModal: a prompt and the free-text
// answer collected for it.
type WizardStep struct {
	Prompt string
	Answer string
}

// WizardOutcome is the result of a closed WizardModal.
type WizardOutcome struct {
	Steps    []WizardStep
	Canceled bool
}

// WizardModal walks the user through a fixed sequence of prompts
// (e.g. config-generation questions), one per page, with Back/Next.
type WizardModal struct {
	steps   []WizardStep
	current int
	input   textinput.Model

	outcome *WizardOutcome
}

// NewWizardModal builds a wizard over the given ordered prompts.
func NewWizardModal(prompts []string) *WizardModal {
	steps := make([]WizardStep, len(prompts))
	for i, p := range prompts {
		steps[i] = WizardStep{Prompt: p}
	}
	ti := textinput.New()
	ti.Focus()
	return &WizardModal{steps: steps, input: ti}
}

func (m *WizardModal) Kind() ModalKind { return ModalWizard }
func (m *WizardModal) Done() bool      { return m.outcome != nil }

func (m *WizardModal) Outcome() WizardOutcome {
	if m.outcome == nil {
		return WizardOutcome{Canceled: true}
	}
	return *m.outcome
}

func (m *WizardModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.outcome = &WizardOutcome{Canceled: true}
			return m, nil

		case tea.KeyEnter:
			m.steps[m.current].Answer = m.input.Value()
			if m.current == len(m.steps)-1 {
				m.outcome = &WizardOutcome{Steps: append([]WizardStep(nil), m.steps...)}
				return m, nil
			}
			m.current++
			m.input.SetValue("")
			return m, nil

		case tea.KeyCtrlP:
			if m.current > 0 {
				m.steps[m.current].Answer = m.input.Value()
				m.current--
				m.input.SetValue(m.steps[m.current].Answer)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *WizardModal) View(viewportWidth int) string {
	width := modalWidth(viewportWidth, 24, 72)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(width).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.steps[m.current].Prompt))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).
		Render(stepProgress(m.current, len(m.steps))))
	return border.Render(b.String())
}

func stepProgress(current, total int) string {
	return "step " + strconv.Itoa(current+1) + " of " + strconv.Itoa(total)
}
