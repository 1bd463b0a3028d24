package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nextlevelbuilder/vtgo/internal/tui/markdown"
)

// PlanOutcome is one of the four resolutions of a plan-confirmation modal
// (§4.2 step: "Execute, AutoAccept -> transition to Edit; EditPlan -> stay
// in Plan; Cancel -> stay in Plan").
type PlanOutcome string

const (
	PlanExecute    PlanOutcome = "execute"
	PlanAutoAccept PlanOutcome = "auto_accept"
	PlanEdit       PlanOutcome = "edit_plan"
	PlanCancel     PlanOutcome = "cancel"
)

// ExitsPlanMode reports whether the outcome transitions the controller
// back to Edit mode.
func (o PlanOutcome) ExitsPlanMode() bool {
	return o == PlanExecute || o == PlanAutoAccept
}

// PlanConfirmationModal presents the plan drafted by exit_plan_mode and
// collects one of the four outcomes above.
type PlanConfirmationModal struct {
	plan     string
	choices  []PlanOutcome
	selected int
	outcome  *PlanOutcome
}

// NewPlanConfirmationModal builds the modal over the raw (markdown) plan
// text.
func NewPlanConfirmationModal(plan string) *PlanConfirmationModal {
	return &PlanConfirmationModal{
		plan:    plan,
		choices: []PlanOutcome{PlanExecute, PlanAutoAccept, PlanEdit, PlanCancel},
	}
}

func (m *PlanConfirmationModal) Kind() ModalKind { return ModalPlanConfirmation }
func (m *PlanConfirmationModal) Done() bool      { return m.outcome != nil }

// Outcome returns the chosen resolution once Done reports true.
func (m *PlanConfirmationModal) Outcome() PlanOutcome {
	if m.outcome == nil {
		return PlanCancel
	}
	return *m.outcome
}

func (m *PlanConfirmationModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		cancel := PlanCancel
		m.outcome = &cancel
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.choices)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		choice := m.choices[m.selected]
		m.outcome = &choice
	}
	return m, nil
}

func (m *PlanConfirmationModal) View(viewportWidth int) string {
	width := modalWidth(viewportWidth, 40, 100)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(width).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(markdown.RenderPlan(m.plan))
	b.WriteString("\n\n")
	labels := map[PlanOutcome]string{
		PlanExecute:    "Execute",
		PlanAutoAccept: "Auto-accept future plans",
		PlanEdit:       "Keep editing the plan",
		PlanCancel:     "Cancel, stay in Plan mode",
	}
	for i, c := range m.choices {
		line := labels[c]
		if i == m.selected {
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Render("> " + line))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("  " + line))
		}
		if i < len(m.choices)-1 {
			b.WriteString("\n")
		}
	}
	return border.Render(b.String())
}
