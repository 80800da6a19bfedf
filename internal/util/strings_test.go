package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short unchanged", "Tabs beat spaces", 40, "Tabs beat spaces"},
		{"whitespace collapsed", "  Tabs\n beat\tspaces ", 40, "Tabs beat spaces"},
		{"cut with ellipsis", "How do heat pumps work", 10, "How do he…"},
		{"exact length", "abcde", 5, "abcde"},
		{"unicode counted by rune", "héllo wörld", 6, "héllo…"},
		{"tiny limit", "anything", 1, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shorten(tt.input, tt.max); got != tt.expected {
				t.Errorf("Shorten(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestFitLine(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("Researching the history of printing")

	if got := FitLine(styled, 100); got != styled {
		t.Errorf("line within width should be unchanged, got %q", got)
	}
	if got := FitLine(styled, 0); got != styled {
		t.Errorf("zero width should leave the line alone, got %q", got)
	}

	got := FitLine(styled, 12)
	if w := lipgloss.Width(got); w > 12 {
		t.Errorf("FitLine width = %d, want <= 12", w)
	}

	wide := "日本語のテキスト"
	if w := lipgloss.Width(FitLine(wide, 7)); w > 7 {
		t.Errorf("wide rune width = %d, want <= 7", w)
	}
}
