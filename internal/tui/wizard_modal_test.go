package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardModalWalksStepsInOrder(t *testing.T) {
	m := NewWizardModal([]string{"name?", "email?"})
	assert.Equal(t, "step 1 of 2", stepProgress(m.current, len(m.steps)))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ada")})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	wm := next.(*WizardModal)
	assert.False(t, wm.Done())
	assert.Equal(t, 1, wm.current)

	wm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ada@example.com")})
	next, _ = wm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	wm = next.(*WizardModal)
	require.True(t, wm.Done())

	outcome := wm.Outcome()
	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, "ada", outcome.Steps[0].Answer)
	assert.Equal(t, "ada@example.com", outcome.Steps[1].Answer)
	assert.False(t, outcome.Canceled)
}

func TestWizardModalBackPreservesAnswer(t *testing.T) {
	m := NewWizardModal([]string{"name?", "email?"})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ada")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	wm := next.(*WizardModal)
	assert.Equal(t, 0, wm.current)
	assert.Equal(t, "ada", wm.input.Value())
}

func TestWizardModalEscCancels(t *testing.T) {
	m := NewWizardModal([]string{"name?"})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	wm := next.(*WizardModal)
	require.True(t, wm.Done())
	assert.True(t, wm.Outcome().Canceled)
}
