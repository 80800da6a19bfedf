// Package config provides the interactive configuration editor behind
// "sift config edit".
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/tui/styles"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string   // "string", "bool", "int", "select"
	Options     []string // For select type
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	v          *viper.Viper
	path       string
	categories []Category

	categoryIndex  int
	itemIndex      int
	width          int
	editing        bool
	textInput      textinput.Model
	selectIndex    int // For select-type options
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
}

// Categories returns the editable settings grouped for display.
func Categories() []Category {
	return []Category{
		{
			Name: "Model",
			Items: []ConfigItem{
				{Key: "llm.provider", Label: "Provider", Description: "Language model backend", Type: "select", Options: config.ValidLLMProviders()},
				{Key: "llm.model", Label: "Model", Description: "Model used for every call unless overridden", Type: "string"},
				{Key: "llm.base_url", Label: "Base URL", Description: "OpenAI-compatible endpoint (ignored by other providers)", Type: "string"},
				{Key: "llm.timeout", Label: "Timeout", Description: "Per-call timeout, e.g. 5m", Type: "string"},
				{Key: "llm.max_retries", Label: "Max Retries", Description: "Retries on rate limits and server errors", Type: "int"},
				{Key: "llm.max_tokens", Label: "Max Tokens", Description: "Completion length cap where the backend needs one", Type: "int"},
				{Key: "llm.temperature", Label: "Temperature", Description: "Sampling temperature 0-2, blank for the backend default", Type: "string"},
			},
		},
		{
			Name: "Search",
			Items: []ConfigItem{
				{Key: "search.provider", Label: "Provider", Description: "Web search backend", Type: "select", Options: config.ValidSearchProviders()},
				{Key: "search.max_results", Label: "Max Results", Description: "Results fetched per search", Type: "int"},
			},
		},
		{
			Name: "Research",
			Items: []ConfigItem{
				{Key: "research.default_searches", Label: "Default Searches", Description: "Planned searches when none are requested (1-5)", Type: "int"},
				{Key: "research.clarify", Label: "Clarify Queries", Description: "Ask follow-up questions for ambiguous queries", Type: "bool"},
				{Key: "research.output_dir", Label: "Report Directory", Description: "Where Markdown reports are exported", Type: "string"},
				{Key: "research.max_concurrency", Label: "Max Concurrency", Description: "Searches in flight at once, 0 for no limit", Type: "int"},
			},
		},
		{
			Name: "Debate",
			Items: []ConfigItem{
				{Key: "debate.oppose", Label: "Opposition", Description: "Run the AGAINST debater", Type: "bool"},
				{Key: "debate.output_dir", Label: "Artifact Directory", Description: "Where propose.md, oppose.md and decide.md are written", Type: "string"},
				{Key: "debate.chunk_sentences", Label: "Sentences per Line", Description: "Sentences per line of the simulated conversation", Type: "int"},
				{Key: "debate.judge_model", Label: "Judge Model", Description: "Model for the judge (empty = llm.model)", Type: "string"},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{Key: "logging.enabled", Label: "Enabled", Description: "Write JSON debug logs to the state directory", Type: "bool"},
				{Key: "logging.level", Label: "Level", Description: "Minimum level written", Type: "select", Options: config.ValidLogLevels()},
				{Key: "tracing.enabled", Label: "Langfuse Tracing", Description: "Send traces to Langfuse", Type: "bool"},
			},
		},
	}
}

// New creates a config editor over v that saves to path.
func New(v *viper.Viper, path string) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		v:          v,
		path:       path,
		categories: Categories(),
		textInput:  ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// Clear messages on any key
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex = (m.categoryIndex - 1 + len(m.categories)) % len(m.categories)
			m.itemIndex = 0

		case "enter", " ":
			item := m.currentItem()
			switch item.Type {
			case "bool":
				m.v.Set(item.Key, !m.v.GetBool(item.Key))
				m.saveConfig()
			case "select":
				m.editing = true
				m.selectIndex = m.currentSelectIndex()
			default:
				m.editing = true
				m.textInput.SetValue(m.displayValue(item))
				m.textInput.Focus()
			}

		case "r":
			m.resetCurrentToDefault()
		}
	}

	return m, nil
}

func (m Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "enter":
		value := m.textInput.Value()
		if item.Type == "select" {
			value = item.Options[m.selectIndex]
		}
		if err := m.validateAndSet(item, value); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.saveConfig()
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "up", "k":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex - 1 + len(item.Options)) % len(item.Options)
			return m, nil
		}

	case "down", "j":
		if item.Type == "select" {
			m.selectIndex = (m.selectIndex + 1) % len(item.Options)
			return m, nil
		}
	}

	if item.Type != "select" {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("sift configuration"))
	b.WriteString("\n")

	path := m.path
	if _, err := os.Stat(path); err != nil {
		path += " (not created)"
	}
	b.WriteString(styles.Muted.Render("Config file: " + path))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		active := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if active {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Items {
			b.WriteString(m.renderItem(item, active && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
	}
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Secondary.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	label := fmt.Sprintf("%-22s", item.Label)
	value := m.displayValue(item)
	if value == "" {
		value = "-"
	}

	if selected {
		return fmt.Sprintf("  %s %s  %s",
			styles.Secondary.Render(">"),
			styles.Question.Render(label),
			styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(label), value)
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content strings.Builder
	if item.Type == "select" {
		fmt.Fprintf(&content, "Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content.WriteString(styles.Primary.Bold(true).Render(" > "+opt) + "\n")
			} else {
				content.WriteString("   " + opt + "\n")
			}
		}
	} else {
		fmt.Fprintf(&content, "Edit %s:\n\n", item.Label)
		content.WriteString(m.textInput.View())
	}
	return "\n" + box.Render(content.String())
}

func (m Model) renderHelp() string {
	if m.editing {
		return styles.HelpBar.Render(styles.HelpItem("enter", "save") + "  " + styles.HelpItem("esc", "cancel"))
	}
	return styles.HelpBar.Render(strings.Join([]string{
		styles.HelpItem("j/k", "navigate"),
		styles.HelpItem("tab", "next category"),
		styles.HelpItem("enter", "edit"),
		styles.HelpItem("r", "reset"),
		styles.HelpItem("q", "quit"),
	}, "  "))
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) displayValue(item ConfigItem) string {
	switch item.Type {
	case "bool":
		return strconv.FormatBool(m.v.GetBool(item.Key))
	case "int":
		return strconv.Itoa(m.v.GetInt(item.Key))
	default:
		return m.v.GetString(item.Key)
	}
}

func (m Model) currentSelectIndex() int {
	item := m.currentItem()
	if i := slices.Index(item.Options, m.v.GetString(item.Key)); i >= 0 {
		return i
	}
	return 0
}

func (m *Model) validateAndSet(item ConfigItem, value string) error {
	value = strings.TrimSpace(value)
	switch item.Type {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected integer value")
		}
		if n < 0 {
			return fmt.Errorf("value must be non-negative")
		}
		m.v.Set(item.Key, n)
	case "select":
		if !slices.Contains(item.Options, value) {
			return fmt.Errorf("invalid option: %s", value)
		}
		m.v.Set(item.Key, value)
	default:
		m.v.Set(item.Key, value)
	}
	return nil
}

func (m *Model) saveConfig() {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to create config directory: %v", err)
		return
	}
	if err := m.v.WriteConfigAs(m.path); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}
	m.infoMsg = "Saved!"
	m.configModified = true
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if def, ok := DefaultValues()[item.Key]; ok {
		m.v.Set(item.Key, def)
		m.saveConfig()
		m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
	}
}

// DefaultValues maps every editable key to its default value.
func DefaultValues() map[string]any {
	d := config.Default()
	return map[string]any{
		"llm.provider":              d.LLM.Provider,
		"llm.model":                 d.LLM.Model,
		"llm.base_url":              d.LLM.BaseURL,
		"llm.timeout":               d.LLM.Timeout,
		"llm.max_retries":           d.LLM.MaxRetries,
		"llm.max_tokens":            d.LLM.MaxTokens,
		"llm.temperature":           d.LLM.Temperature,
		"search.provider":           d.Search.Provider,
		"search.max_results":        d.Search.MaxResults,
		"research.default_searches": d.Research.DefaultSearches,
		"research.clarify":          d.Research.Clarify,
		"research.output_dir":       d.Research.OutputDir,
		"research.max_concurrency":  d.Research.MaxConcurrency,
		"debate.oppose":             d.Debate.Oppose,
		"debate.output_dir":         d.Debate.OutputDir,
		"debate.chunk_sentences":    d.Debate.ChunkSentences,
		"debate.judge_model":        d.Debate.JudgeModel,
		"logging.enabled":           d.Logging.Enabled,
		"logging.level":             d.Logging.Level,
		"tracing.enabled":           d.Tracing.Enabled,
	}
}

// Run starts the interactive config UI on the global viper instance.
func Run() error {
	p := tea.NewProgram(New(viper.GetViper(), config.ConfigFile()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
