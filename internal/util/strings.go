// Package util holds small text helpers shared by the CLI and terminal UI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// Shorten collapses whitespace in s and cuts it to maxRunes runes, ending
// in an ellipsis when anything was removed. Queries and motions pass
// through it before they become window titles or log attributes.
func Shorten(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxRunes <= 1 {
		return ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return strings.TrimRight(string(runes[:maxRunes-1]), " ") + ellipsis
}

// FitLine cuts a styled single line to width terminal columns. Escape
// sequences are preserved and wide runes count double.
func FitLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}
