package styles

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Palette is the set of colors the styles are built from.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
	Accent    lipgloss.Color
}

// DefaultPalette returns the built-in purple/green dark palette.
func DefaultPalette() *Palette {
	return &Palette{
		Primary:   lipgloss.Color("#A78BFA"),
		Secondary: lipgloss.Color("#10B981"),
		Warning:   lipgloss.Color("#F59E0B"),
		Error:     lipgloss.Color("#F87171"),
		Muted:     lipgloss.Color("#9CA3AF"),
		Text:      lipgloss.Color("#F9FAFB"),
		Border:    lipgloss.Color("#6B7280"),
		Accent:    lipgloss.Color("#60A5FA"),
	}
}

// ThemeFile represents a custom theme definition loaded from YAML.
//
// Example:
//
//	name: Solarized
//	colors:
//	  primary: "#268BD2"
//	  error: "#DC322F"
type ThemeFile struct {
	Name   string      `yaml:"name"`
	Author string      `yaml:"author,omitempty"`
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors contains the color overrides of a theme. Empty entries keep
// the default palette color. Colors are hex (#RRGGBB or #RGB).
type ThemeColors struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
	Warning   string `yaml:"warning,omitempty"`
	Error     string `yaml:"error,omitempty"`
	Muted     string `yaml:"muted,omitempty"`
	Text      string `yaml:"text,omitempty"`
	Border    string `yaml:"border,omitempty"`
	Accent    string `yaml:"accent,omitempty"`
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadThemeFile loads and validates a theme from a YAML file.
func LoadThemeFile(path string) (*ThemeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	return &theme, nil
}

// Validate checks that the theme has a name and well-formed colors.
func (t *ThemeFile) Validate() error {
	var errs []error
	if t.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}

	fields := []struct {
		name  string
		value string
	}{
		{"primary", t.Colors.Primary},
		{"secondary", t.Colors.Secondary},
		{"warning", t.Colors.Warning},
		{"error", t.Colors.Error},
		{"muted", t.Colors.Muted},
		{"text", t.Colors.Text},
		{"border", t.Colors.Border},
		{"accent", t.Colors.Accent},
	}
	for _, f := range fields {
		if f.value != "" && !hexColorRegex.MatchString(f.value) {
			errs = append(errs, fmt.Errorf("colors.%s: invalid hex color %q", f.name, f.value))
		}
	}
	return errors.Join(errs...)
}

// ToPalette overlays the theme's colors on the default palette.
func (t *ThemeFile) ToPalette() *Palette {
	p := DefaultPalette()
	p.Primary = colorOrDefault(t.Colors.Primary, p.Primary)
	p.Secondary = colorOrDefault(t.Colors.Secondary, p.Secondary)
	p.Warning = colorOrDefault(t.Colors.Warning, p.Warning)
	p.Error = colorOrDefault(t.Colors.Error, p.Error)
	p.Muted = colorOrDefault(t.Colors.Muted, p.Muted)
	p.Text = colorOrDefault(t.Colors.Text, p.Text)
	p.Border = colorOrDefault(t.Colors.Border, p.Border)
	p.Accent = colorOrDefault(t.Colors.Accent, p.Accent)
	return p
}

func colorOrDefault(color string, def lipgloss.Color) lipgloss.Color {
	if color == "" {
		return def
	}
	return lipgloss.Color(color)
}

// LoadPalette loads path and returns its palette. An empty path yields the
// default palette.
func LoadPalette(path string) (*Palette, error) {
	if path == "" {
		return DefaultPalette(), nil
	}
	theme, err := LoadThemeFile(path)
	if err != nil {
		return nil, err
	}
	return theme.ToPalette(), nil
}
