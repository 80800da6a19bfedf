// Package styles holds the lipgloss palette and styles shared by the
// terminal views, plus YAML theme files that can override the palette.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on dark terminals
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Status    lipgloss.Style
	Question  lipgloss.Style
	Prompt    lipgloss.Style
	Link      lipgloss.Style
	HelpBar   lipgloss.Style
	HelpKey   lipgloss.Style
	ReportBox lipgloss.Style
	Spinner   lipgloss.Style

	// Debate speakers
	SpeakerFor     lipgloss.Style
	SpeakerAgainst lipgloss.Style
	Verdict        lipgloss.Style
)

func init() {
	rebuild()
}

// Apply replaces the palette colors and rebuilds every style. It must be
// called from the goroutine that renders, typically inside a tea.Model
// Update.
func Apply(p *Palette) {
	if p == nil {
		p = DefaultPalette()
	}
	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	TextColor = p.Text
	BorderColor = p.Border
	BlueColor = p.Accent
	rebuild()
}

func rebuild() {
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	Status = lipgloss.NewStyle().Foreground(TextColor)

	Question = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor)

	Prompt = lipgloss.NewStyle().Foreground(SecondaryColor)

	Link = lipgloss.NewStyle().
		Foreground(BlueColor).
		Underline(true)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	ReportBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	Spinner = lipgloss.NewStyle().Foreground(PrimaryColor)

	SpeakerFor = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	SpeakerAgainst = lipgloss.NewStyle().
		Bold(true).
		Foreground(ErrorColor)

	Verdict = lipgloss.NewStyle().
		Bold(true).
		Foreground(WarningColor)
}

// HelpItem renders a "key action" pair for the help bar.
func HelpItem(key, action string) string {
	return HelpKey.Render(key) + " " + Muted.Render(action)
}
