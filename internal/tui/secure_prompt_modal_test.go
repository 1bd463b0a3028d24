package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurePromptModalEnterReturnsValue(t *testing.T) {
	m := NewSecurePromptModal("API key")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("sk-test")})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sm := next.(*SecurePromptModal)
	require.True(t, sm.Done())
	outcome := sm.Outcome()
	assert.Equal(t, "sk-test", outcome.Value)
	assert.False(t, outcome.Canceled)
}

func TestSecurePromptModalEscCancels(t *testing.T) {
	m := NewSecurePromptModal("API key")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	sm := next.(*SecurePromptModal)
	require.True(t, sm.Done())
	assert.True(t, sm.Outcome().Canceled)
}

func TestSecurePromptModalMasksInput(t *testing.T) {
	m := NewSecurePromptModal("API key")
	assert.Equal(t, '•', m.input.EchoCharacter)
}
