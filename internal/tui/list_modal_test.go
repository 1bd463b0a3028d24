package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []ListItem {
	return []ListItem{
		{Label: "read_file", Description: "read a workspace file"},
		{Label: "write_file", Description: "write a workspace file"},
		{Label: "run_shell", Description: "run a shell command"},
	}
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, fuzzyMatch("", "anything"))
	assert.True(t, fuzzyMatch("rf", "read_file"))
	assert.True(t, fuzzyMatch("RF", "read_file"))
	assert.False(t, fuzzyMatch("zz", "read_file"))
}

func TestListModalFilterNarrowsVisible(t *testing.T) {
	m := NewListModal(ModalFilePalette, testItems(), 5)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("write")})
	lm := next.(*ListModal)
	assert.Equal(t, []int{1}, lm.visibleIndices)
}

func TestListModalEnterSelectsVisibleItem(t *testing.T) {
	m := NewListModal(ModalList, testItems(), 5)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lm := next.(*ListModal)
	require.True(t, lm.Done())
	outcome := lm.Outcome()
	require.NotNil(t, outcome.Selected)
	assert.Equal(t, "write_file", outcome.Selected.Label)
	assert.False(t, outcome.Canceled)
}

func TestListModalEscCancels(t *testing.T) {
	m := NewListModal(ModalList, testItems(), 5)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	lm := next.(*ListModal)
	require.True(t, lm.Done())
	assert.True(t, lm.Outcome().Canceled)
}

func TestListModalEnterWithNoMatchesCancels(t *testing.T) {
	m := NewListModal(ModalList, testItems(), 5)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lm := next.(*ListModal)
	assert.True(t, lm.Outcome().Canceled)
}

func TestListModalBackspaceWidensFilter(t *testing.T) {
	m := NewListModal(ModalList, testItems(), 5)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("write")})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	lm := next.(*ListModal)
	assert.Equal(t, "", lm.filterQuery)
	assert.Len(t, lm.visibleIndices, len(testItems()))
}

func TestListModalDownDoesNotOverrunVisible(t *testing.T) {
	m := NewListModal(ModalList, testItems(), 5)
	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, len(testItems())-1, m.selected)
}
