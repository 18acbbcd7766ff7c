// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is a single rendered rune with its display width. Passages are
// wrapped at spaces only, so a cell remembers whether it is one.
type cell struct {
	s     string
	width int
	space bool
}

// activeWordSpan returns the [start, end) rune range of the word the
// cursor sits in, or the next word when the cursor is on a space.
func activeWordSpan(target []rune, cursor int) (int, int) {
	if cursor < 0 || cursor >= len(target) {
		return -1, -1
	}
	start := cursor
	if target[cursor] == ' ' {
		for start < len(target) && target[start] == ' ' {
			start++
		}
		if start == len(target) {
			return -1, -1
		}
	} else {
		for start > 0 && target[start-1] != ' ' {
			start--
		}
	}
	end := start
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

func buildCells(target, input []rune, cursor int) []cell {
	wordStart, wordEnd := activeWordSpan(target, cursor)

	out := make([]cell, 0, len(target))
	for i, want := range target {
		displayed := want
		style := upcomingStyle
		switch {
		case i < len(input):
			switch {
			case want == ' ' && input[i] != ' ':
				displayed = '•'
				style = missStyle
			case input[i] == want:
				style = typedStyle
			default:
				style = missStyle
			}
		case want != ' ' && i >= wordStart && i < wordEnd:
			style = activeWordStyle
		}
		if i == cursor && i >= len(input) {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:     style.Render(string(displayed)),
			width: runewidth.RuneWidth(displayed),
			space: want == ' ',
		})
	}
	return out
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// wrapCells breaks the cells into lines no wider than width,
// preferring to break at the last space on the line.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(cells); {
		c := cells[i]
		if lineWidth+c.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				out.WriteString(renderCells(line[:lastSpace]))
				out.WriteRune('\n')
				rest := append([]cell{}, line[lastSpace+1:]...)
				line = rest
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = line[:0]
			}
			lineWidth = 0
			lastSpace = -1
			for j, lc := range line {
				lineWidth += lc.width
				if lc.space {
					lastSpace = j
				}
			}
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.space {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}
