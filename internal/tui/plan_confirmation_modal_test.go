package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanOutcomeExitsPlanMode(t *testing.T) {
	assert.True(t, PlanExecute.ExitsPlanMode())
	assert.True(t, PlanAutoAccept.ExitsPlanMode())
	assert.False(t, PlanEdit.ExitsPlanMode())
	assert.False(t, PlanCancel.ExitsPlanMode())
}

func TestPlanConfirmationModalDefaultsToExecute(t *testing.T) {
	m := NewPlanConfirmationModal("# plan\n- step one")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(*PlanConfirmationModal)
	require.True(t, pm.Done())
	assert.Equal(t, PlanExecute, pm.Outcome())
}

func TestPlanConfirmationModalNavigatesChoices(t *testing.T) {
	m := NewPlanConfirmationModal("plan")
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(*PlanConfirmationModal)
	assert.Equal(t, PlanAutoAccept, pm.Outcome())
}

func TestPlanConfirmationModalEscCancels(t *testing.T) {
	m := NewPlanConfirmationModal("plan")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	pm := next.(*PlanConfirmationModal)
	require.True(t, pm.Done())
	assert.Equal(t, PlanCancel, pm.Outcome())
}

func TestPlanConfirmationModalUpDoesNotUnderrun(t *testing.T) {
	m := NewPlanConfirmationModal("plan")
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := next.(*PlanConfirmationModal)
	assert.Equal(t, PlanExecute, pm.Outcome())
}
