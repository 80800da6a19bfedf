package tui

import (
	"strings"

	"github.com/Iron-Ham/sift/internal/tui/styles"
)

// RenderEntry renders a single entry. Plain output carries no ANSI styling.
func RenderEntry(e Entry, plain bool) string {
	if plain {
		return e.Text
	}
	switch e.Kind {
	case EntryStatus:
		return styles.Status.Render(e.Text)
	case EntryTrace:
		return styles.Link.Render(e.Text)
	case EntryResult:
		return renderHeadings(e.Text)
	default:
		return e.Text
	}
}

// RenderEntries renders entries as a Markdown document, separating
// multi-line blocks from the status lines around them.
func RenderEntries(entries []Entry, plain bool) string {
	var b strings.Builder
	prevBlock := false
	for i, e := range entries {
		block := e.Kind == EntrySection || e.Kind == EntryResult
		if i > 0 {
			b.WriteString("\n")
			if block || prevBlock {
				b.WriteString("\n")
			}
		}
		b.WriteString(RenderEntry(e, plain))
		prevBlock = block
	}
	return b.String()
}

// renderHeadings styles Markdown heading lines and leaves the rest as is.
func renderHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = styles.Title.UnsetMarginBottom().Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
