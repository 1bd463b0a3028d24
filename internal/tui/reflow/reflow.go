// Package reflow wraps transcript text to a target terminal width using
// rune display width (CJK/emoji-aware) rather than byte or rune count, so
// wide-glyph content doesn't overflow or under-fill a line.
package reflow

import (
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the caller can't determine the terminal width
// (e.g. output is piped).
const DefaultWidth = 80

// TerminalWidth returns the current stdout terminal width, or DefaultWidth
// if stdout isn't a terminal (piped output, redirected to a file).
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Wrap splits s into lines no wider than width display columns, breaking on
// spaces where possible and hard-breaking long unbroken runs (e.g. a path
// or URL with no spaces). Existing newlines in s are preserved as line
// breaks before wrapping is applied within each line.
func Wrap(s string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var out []byte
	lines := splitLines(s)
	for i, line := range lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, wrapLine(line, width)...)
	}
	return string(out)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func wrapLine(line string, width int) []byte {
	if runewidth.StringWidth(line) <= width {
		return []byte(line)
	}

	var out []byte
	var cur []rune
	curWidth := 0

	flush := func() {
		if len(cur) > 0 {
			out = append(out, []byte(string(cur))...)
			out = append(out, '\n')
			cur = cur[:0]
			curWidth = 0
		}
	}

	for _, word := range splitWords(line) {
		wWidth := runewidth.StringWidth(word)
		if wWidth > width {
			// Word itself is wider than the line: hard-break it.
			flush()
			out = append(out, hardBreak(word, width)...)
			continue
		}
		sep := 0
		if curWidth > 0 {
			sep = 1
		}
		if curWidth+sep+wWidth > width {
			flush()
			cur = append(cur, []rune(word)...)
			curWidth = wWidth
			continue
		}
		if curWidth > 0 {
			cur = append(cur, ' ')
			curWidth++
		}
		cur = append(cur, []rune(word)...)
		curWidth += wWidth
	}
	if len(cur) > 0 {
		out = append(out, []byte(string(cur))...)
	} else if len(out) > 0 {
		out = out[:len(out)-1] // drop trailing newline from the last flush
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	for _, r := range s {
		if r == ' ' {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}

func hardBreak(word string, width int) []byte {
	var out []byte
	var cur []rune
	curWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && len(cur) > 0 {
			out = append(out, []byte(string(cur))...)
			out = append(out, '\n')
			cur = cur[:0]
			curWidth = 0
		}
		cur = append(cur, r)
		curWidth += rw
	}
	out = append(out, []byte(string(cur))...)
	out = append(out, '\n')
	return out
}
