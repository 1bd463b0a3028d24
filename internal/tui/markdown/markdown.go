// Package markdown renders plan-confirmation markdown into styled terminal
// blocks (headings, bullets, code fences) instead of dumping raw text, the
// way the session TUI's plan modal is meant to present exit_plan_mode's
// "plan" argument.
package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	italicStyle  = lipgloss.NewStyle().Italic(true)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	codeBlockBox = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).PaddingLeft(2)
	quoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// RenderPlan parses markdown plan content and renders it as styled ANSI
// text for terminal display.
func RenderPlan(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	src := []byte(markdown)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	r := &renderer{src: src}
	r.renderChildren(&buf, doc)
	return strings.TrimRight(buf.String(), "\n")
}

type renderer struct {
	src []byte
}

func (r *renderer) renderChildren(w *bytes.Buffer, node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		r.renderNode(w, child)
	}
}

func (r *renderer) renderNode(w *bytes.Buffer, node ast.Node) {
	switch n := node.(type) {
	case *ast.Paragraph:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		w.WriteString(inner.String())
		w.WriteString("\n\n")

	case *ast.Heading:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		prefix := strings.Repeat("#", n.Level) + " "
		w.WriteString(headingStyle.Render(prefix + inner.String()))
		w.WriteString("\n\n")

	case *ast.ThematicBreak:
		w.WriteString(strings.Repeat("─", 40))
		w.WriteString("\n\n")

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			w.WriteString(quoteStyle.Render("│ " + line))
			w.WriteString("\n")
		}
		w.WriteString("\n")

	case *ast.FencedCodeBlock:
		r.renderCodeLines(w, n.Lines())

	case *ast.CodeBlock:
		r.renderCodeLines(w, n.Lines())

	case *ast.List:
		r.renderList(w, n)

	case *ast.ListItem:
		r.renderChildren(w, n)

	case *ast.Text:
		w.Write(n.Segment.Value(r.src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.WriteString("\n")
		}

	case *ast.String:
		w.Write(n.Value)

	case *ast.CodeSpan:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		w.WriteString(codeStyle.Render(inner.String()))

	case *ast.Emphasis:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		if n.Level >= 2 {
			w.WriteString(boldStyle.Render(inner.String()))
		} else {
			w.WriteString(italicStyle.Render(inner.String()))
		}

	case *ast.Link:
		var inner bytes.Buffer
		r.renderChildren(&inner, n)
		w.WriteString(inner.String())
		w.WriteString(" (")
		w.Write(n.Destination)
		w.WriteString(")")

	case *ast.AutoLink:
		w.Write(n.URL(r.src))

	default:
		r.renderChildren(w, node)
	}
}

func (r *renderer) renderCodeLines(w *bytes.Buffer, lines text.Segments) {
	var inner bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		inner.Write(lines.At(i).Value(r.src))
	}
	for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
		w.WriteString(codeBlockBox.Render(line))
		w.WriteString("\n")
	}
	w.WriteString("\n")
}

func (r *renderer) renderList(w *bytes.Buffer, list *ast.List) {
	i := 1
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		var inner bytes.Buffer
		r.renderChildren(&inner, child)
		text := strings.TrimRight(inner.String(), "\n")
		marker := "•"
		if list.IsOrdered() {
			marker = strconv.Itoa(i) + "."
		}
		for j, line := range strings.Split(text, "\n") {
			if j == 0 {
				w.WriteString("  " + marker + " " + line + "\n")
			} else {
				w.WriteString("    " + line + "\n")
			}
		}
		i++
	}
	w.WriteString("\n")
}
