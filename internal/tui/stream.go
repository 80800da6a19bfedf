package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/sift/internal/tui/styles"
	"github.com/Iron-Ham/sift/internal/util"
)

const (
	defaultWidth  = 80
	defaultHeight = 12
	// chromeHeight is the title, status and help lines around the viewport.
	chromeHeight = 4
)

// Messages

type entryMsg Entry

type doneMsg struct {
	err error
}

type themeMsg struct {
	palette *styles.Palette
	err     error
}

// StreamModel shows the entries of a running flow in a scrolling viewport
// with a spinner next to the latest status line. It quits once the flow
// reports completion or the user presses ctrl+c.
type StreamModel struct {
	title    string
	spinner  spinner.Model
	viewport viewport.Model
	entries  []Entry
	status   string
	width    int
	done     bool
	err      error
	canceled bool
	themeErr string
}

// NewStreamModel creates a model titled title.
func NewStreamModel(title string) StreamModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return StreamModel{
		title:    title,
		spinner:  sp,
		viewport: viewport.New(defaultWidth, defaultHeight),
		width:    defaultWidth,
	}
}

// Entries returns every entry received so far.
func (m StreamModel) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Err returns the error the flow finished with.
func (m StreamModel) Err() error { return m.err }

// Canceled reports whether the user interrupted the flow.
func (m StreamModel) Canceled() bool { return m.canceled }

func (m StreamModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m StreamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case entryMsg:
		e := Entry(msg)
		m.entries = append(m.entries, e)
		if e.Kind == EntryStatus {
			m.status = e.Text
		}
		m.refresh()
		return m, nil

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case themeMsg:
		if msg.err != nil {
			m.themeErr = msg.err.Error()
			return m, nil
		}
		m.themeErr = ""
		styles.Apply(msg.palette)
		m.spinner.Style = styles.Spinner
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh re-renders the entries into the viewport and follows the tail.
func (m *StreamModel) refresh() {
	content := RenderEntries(m.entries, false)
	if m.width > 0 {
		content = ansi.Wrap(content, m.width, "")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m StreamModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(util.FitLine(styles.Title.UnsetMarginBottom().Render(m.title), m.width))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	status := m.status
	if status == "" {
		status = "Starting..."
	}
	b.WriteString(util.FitLine(m.spinner.View()+" "+styles.Muted.Render(status), m.width))
	if m.themeErr != "" {
		b.WriteString("\n" + styles.Error.Render(m.themeErr))
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpBar.UnsetMarginTop().Render(
		styles.HelpItem("↑/↓", "scroll") + "  " + styles.HelpItem("ctrl+c", "cancel")))
	return b.String()
}
