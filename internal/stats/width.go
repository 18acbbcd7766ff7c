package stats

import (
	"os"

	"golang.org/x/term"
)

const fallbackWidth = 80

// TerminalWidth returns the current terminal width, or a default when
// stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// SparklineWidth leaves room for the trend label in the summary.
func SparklineWidth(total int) int {
	width := total - 20
	if width < 10 {
		width = 10
	}
	return width
}
