package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ListItem is one row of a ListModal.
type ListItem struct {
	Label       string
	Description string
}

// ListOutcome is the result of a closed ListModal.
type ListOutcome struct {
	Selected *ListItem
	Canceled bool
}

// ListModal is the generic incremental-search list used directly for
// ModalList, and specialized (by Kind) for ModalFilePalette,
// ModalSlashPalette, and ModalConfigPalette — all three are structurally
// the same filtered/paged list, differing only in what populates Items
// and how the caller interprets the outcome.
type ListModal struct {
	kind ModalKind
	all  []ListItem

	filterQuery    string
	visibleIndices []int
	selected       int
	viewportRows   int
	page           int

	outcome *ListOutcome
}

// NewListModal builds a list modal of the given kind over items. kind
// should be one of ModalList, ModalFilePalette, ModalSlashPalette, or
// ModalConfigPalette.
func NewListModal(kind ModalKind, items []ListItem, viewportRows int) *ListModal {
	if viewportRows < 1 {
		viewportRows = 8
	}
	m := &ListModal{kind: kind, all: items, viewportRows: viewportRows}
	m.refilter()
	return m
}

func (m *ListModal) Kind() ModalKind { return m.kind }
func (m *ListModal) Done() bool      { return m.outcome != nil }

// Outcome returns the result once Done reports true.
func (m *ListModal) Outcome() ListOutcome {
	if m.outcome == nil {
		return ListOutcome{Canceled: true}
	}
	return *m.outcome
}

func (m *ListModal) refilter() {
	m.visibleIndices = m.visibleIndices[:0]
	for i, it := range m.all {
		if fuzzyMatch(m.filterQuery, it.Label) {
			m.visibleIndices = append(m.visibleIndices, i)
		}
	}
	if m.selected >= len(m.visibleIndices) {
		m.selected = 0
	}
	m.page = m.selected / m.viewportRows
}

// fuzzyMatch reports whether every rune of query appears in s in order
// (case-insensitive), the same "subsequence" fuzzy match used by most of
// the pack's palette/completion UIs.
func fuzzyMatch(query, s string) bool {
	if query == "" {
		return true
	}
	qRunes := []rune(strings.ToLower(query))
	s = strings.ToLower(s)
	qi := 0
	for _, r := range s {
		if qi < len(qRunes) && qRunes[qi] == r {
			qi++
		}
	}
	return qi == len(qRunes)
}

func (m *ListModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.outcome = &ListOutcome{Canceled: true}
		return m, nil

	case tea.KeyEnter:
		if len(m.visibleIndices) > 0 {
			item := m.all[m.visibleIndices[m.selected]]
			m.outcome = &ListOutcome{Selected: &item}
		} else {
			m.outcome = &ListOutcome{Canceled: true}
		}
		return m, nil

	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
			m.page = m.selected / m.viewportRows
		}
		return m, nil

	case tea.KeyDown:
		if m.selected < len(m.visibleIndices)-1 {
			m.selected++
			m.page = m.selected / m.viewportRows
		}
		return m, nil

	case tea.KeyPgUp:
		if m.page > 0 {
			m.page--
			m.selected = m.page * m.viewportRows
		}
		return m, nil

	case tea.KeyPgDown:
		maxPage := (len(m.visibleIndices) - 1) / m.viewportRows
		if maxPage < 0 {
			maxPage = 0
		}
		if m.page < maxPage {
			m.page++
			m.selected = m.page * m.viewportRows
			if m.selected >= len(m.visibleIndices) {
				m.selected = len(m.visibleIndices) - 1
			}
		}
		return m, nil

	case tea.KeyBackspace:
		if len(m.filterQuery) > 0 {
			m.filterQuery = m.filterQuery[:len(m.filterQuery)-1]
			m.refilter()
		}
		return m, nil

	case tea.KeyRunes:
		m.filterQuery += string(keyMsg.Runes)
		m.refilter()
		return m, nil
	}
	return m, nil
}

func (m *ListModal) View(viewportWidth int) string {
	width := modalWidth(viewportWidth, 24, 72)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(width).
		Padding(0, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "Filter: %s\n", m.filterQuery)

	start := m.page * m.viewportRows
	end := start + m.viewportRows
	if end > len(m.visibleIndices) {
		end = len(m.visibleIndices)
	}
	if len(m.visibleIndices) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("no matches"))
	}
	for row := start; row < end; row++ {
		it := m.all[m.visibleIndices[row]]
		line := fmt.Sprintf("%s  %s", it.Label, it.Description)
		if row == m.selected {
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Render("> " + line))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("  " + line))
		}
		if row < end-1 {
			b.WriteString("\n")
		}
	}
	return border.Render(b.String())
}
