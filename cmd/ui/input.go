// Package ui provides input/output utilities for the CLI
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nextlevelbuilder/vtgo/internal/tui"
)

// InputResult contains the result of user input
type InputResult struct {
	Value     string
	Submitted bool
	Cancelled bool
}

// Command represents a slash command
type Command struct {
	Name        string
	Description string
}

// DefaultCommands are the built-in slash commands
var DefaultCommands = []Command{
	{"/compress", "Compress conversation history, keep last 3 turns"},
	{"/rewind", "Restore a per-turn checkpoint (conversation/code/both)"},
	{"/init", "Initialize persona templates (project/local)"},
	{"/help", "Show help"},
	{"/quit", "Quit session"},
}

// inputModel is the bubbletea model for text input
type inputModel struct {
	textarea  textarea.Model
	submitted bool
	cancelled bool
	prompt    string

	history    []string
	historyPos int // -1 means "not browsing history"
	draft      string

	// Slash-command palette: opened when the user types a bare "/",
	// closed once the underlying ListModal reports Done.
	palette      tui.ModalStack
	paletteModal *tui.ListModal
	paletteWidth int
}

// NewInputModel creates a new input model with optional prompt
func newInputModel(prompt string, placeholder string) inputModel {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Focus()

	// Configure textarea for chat input
	ta.CharLimit = 0 // No limit
	ta.SetWidth(80)
	ta.SetHeight(3) // Start with 3 lines, will auto-expand
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true) // Alt+Enter for newline

	// Style
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return inputModel{
		textarea:     ta,
		prompt:       prompt,
		historyPos:   -1,
		paletteWidth: 80,
	}
}

func (m inputModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	// While the slash palette is open it owns all key input; the textarea
	// keeps whatever was in it ("/") until the palette resolves.
	if m.palette.IsOpen() {
		cmd = m.palette.Update(msg)
		if !m.palette.IsOpen() {
			outcome := m.paletteModal.Outcome()
			m.paletteModal = nil
			if !outcome.Canceled && outcome.Selected != nil {
				m.textarea.SetValue(outcome.Selected.Label + " ")
			} else {
				m.textarea.SetValue("")
			}
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			// Ctrl+C cancels input
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyCtrlD:
			// Ctrl+D also cancels/exits
			if m.textarea.Value() == "" {
				m.cancelled = true
				return m, tea.Quit
			}

		case tea.KeyEnter:
			// Enter submits (unless Alt is pressed for newline)
			if !msg.Alt {
				m.submitted = true
				return m, tea.Quit
			}

		case tea.KeyCtrlJ:
			// Ctrl+J inserts newline (like deepagents)
			m.textarea.InsertString("\n")
			return m, nil

		case tea.KeyCtrlP:
			// Ctrl+P: previous input (history)
			m.prevHistory()
			return m, nil

		case tea.KeyCtrlN:
			// Ctrl+N: next input (history)
			m.nextHistory()
			return m, nil
		}

	case tea.WindowSizeMsg:
		// Adjust width based on terminal size
		m.textarea.SetWidth(msg.Width - 10)
		m.paletteWidth = msg.Width
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	// A bare "/" opens the slash palette; further filtering happens inside
	// the palette's own ListModal, not the textarea.
	if m.textarea.Value() == "/" {
		m.paletteModal = tui.NewListModal(tui.ModalSlashPalette, commandListItems(), 6)
		m.palette.Push(m.paletteModal)
	}

	return m, tea.Batch(cmds...)
}

// commandListItems adapts DefaultCommands into the generic tui.ListItem
// shape the slash palette's ListModal filters over.
func commandListItems() []tui.ListItem {
	items := make([]tui.ListItem, len(DefaultCommands))
	for i, c := range DefaultCommands {
		items[i] = tui.ListItem{Label: c.Name, Description: c.Description}
	}
	return items
}

func (m inputModel) View() string {
	var b strings.Builder

	// Prompt
	if m.prompt != "" {
		b.WriteString(m.prompt)
	}

	// Textarea
	b.WriteString(m.textarea.View())

	// Slash-command palette
	if m.palette.IsOpen() {
		b.WriteString("\n")
		b.WriteString(m.palette.View(m.paletteWidth))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("type to filter | ↑↓ Select | Enter Run | Esc Close"))
	} else {
		// Help text
		helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Enter Submit | Ctrl+J/Alt+Enter Newline | Ctrl+P/Ctrl+N History | Ctrl+C Cancel"))
	}

	return b.String()
}

func (m *inputModel) prevHistory() {
	if len(m.history) == 0 {
		return
	}
	if m.historyPos == -1 {
		m.draft = m.textarea.Value()
		m.historyPos = len(m.history) - 1
	} else if m.historyPos > 0 {
		m.historyPos--
	}
	m.textarea.SetValue(m.history[m.historyPos])
}

func (m *inputModel) nextHistory() {
	if len(m.history) == 0 || m.historyPos == -1 {
		return
	}
	if m.historyPos < len(m.history)-1 {
		m.historyPos++
		m.textarea.SetValue(m.history[m.historyPos])
		return
	}
	m.historyPos = -1
	m.textarea.SetValue(m.draft)
}

// ReadInput reads multiline input from the user using bubbles textarea
// Returns the input value, whether it was submitted, and any error
func ReadInput(prompt string) (InputResult, error) {
	m := newInputModel(prompt, "Type a message...")
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return InputResult{}, fmt.Errorf("input error: %w", err)
	}

	result := finalModel.(inputModel)
	return InputResult{
		Value:     strings.TrimSpace(result.textarea.Value()),
		Submitted: result.submitted,
		Cancelled: result.cancelled,
	}, nil
}

// ReadInputWithHistory reads input with previously entered values available
func ReadInputWithHistory(prompt string, history []string) (InputResult, error) {
	m := newInputModel(prompt, "Type a message...")
	m.history = append([]string(nil), history...)
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return InputResult{}, fmt.Errorf("input error: %w", err)
	}

	result := finalModel.(inputModel)
	return InputResult{
		Value:     strings.TrimSpace(result.textarea.Value()),
		Submitted: result.submitted,
		Cancelled: result.cancelled,
	}, nil
}

// Confirm asks for yes/no confirmation
func Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false, nil // Default to no
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
