package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestModalWidthClampsToBounds(t *testing.T) {
	assert.Equal(t, 24, modalWidth(10, 24, 72))
	assert.Equal(t, 72, modalWidth(1000, 24, 72))
	assert.Equal(t, 60, modalWidth(100, 24, 72))
}

func TestModalStackStartsClosed(t *testing.T) {
	var s ModalStack
	assert.False(t, s.IsOpen())
	assert.Nil(t, s.Current())
	assert.Equal(t, "", s.View(80))
}

func TestModalStackPushOpensAndPopCloses(t *testing.T) {
	var s ModalStack
	m := NewListModal(ModalList, testItems(), 5)
	s.Push(m)
	assert.True(t, s.IsOpen())
	assert.Equal(t, m, s.Current())
	s.Pop()
	assert.False(t, s.IsOpen())
}

func TestModalStackPushReplacesCurrent(t *testing.T) {
	var s ModalStack
	first := NewListModal(ModalList, testItems(), 5)
	second := NewSecurePromptModal("API key")
	s.Push(first)
	s.Push(second)
	assert.Equal(t, ModalSecurePrompt, s.Current().Kind())
}

func TestModalStackUpdatePopsWhenDone(t *testing.T) {
	var s ModalStack
	s.Push(NewListModal(ModalList, testItems(), 5))
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, s.IsOpen())
}
