package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"
)

func newTestModel(t *testing.T) (Model, *viper.Viper, string) {
	t.Helper()
	v := viper.New()
	for key, value := range DefaultValues() {
		v.SetDefault(key, value)
	}
	path := filepath.Join(t.TempDir(), "sift", "config.yaml")
	return New(v, path), v, path
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCategoriesHaveDefaults(t *testing.T) {
	defaults := DefaultValues()
	for _, cat := range Categories() {
		for _, item := range cat.Items {
			if _, ok := defaults[item.Key]; !ok {
				t.Errorf("%s has no default value", item.Key)
			}
			if item.Type == "select" && len(item.Options) == 0 {
				t.Errorf("%s is a select without options", item.Key)
			}
		}
	}
}

func TestNavigationWraps(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(m, "up")
	last := len(m.categories) - 1
	if m.categoryIndex != last || m.itemIndex != len(m.categories[last].Items)-1 {
		t.Errorf("up from first item = (%d,%d), want last item", m.categoryIndex, m.itemIndex)
	}

	m = press(m, "down")
	if m.categoryIndex != 0 || m.itemIndex != 0 {
		t.Errorf("down from last item = (%d,%d), want (0,0)", m.categoryIndex, m.itemIndex)
	}

	m = press(m, "tab")
	if m.categoryIndex != 1 || m.itemIndex != 0 {
		t.Errorf("tab = (%d,%d), want (1,0)", m.categoryIndex, m.itemIndex)
	}
}

func TestToggleBoolSaves(t *testing.T) {
	m, v, path := newTestModel(t)

	// Research > Clarify Queries
	m.categoryIndex, m.itemIndex = 2, 1
	m = press(m, "enter")

	if v.GetBool("research.clarify") {
		t.Error("research.clarify was not toggled off")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if !strings.Contains(string(data), "clarify: false") {
		t.Errorf("saved config = %s", data)
	}
	if !m.configModified {
		t.Error("configModified = false after save")
	}
}

func TestEditIntValidates(t *testing.T) {
	m, v, _ := newTestModel(t)

	// Research > Default Searches
	m.categoryIndex, m.itemIndex = 2, 0
	m = press(m, "enter")
	if !m.editing {
		t.Fatal("enter did not start editing")
	}

	m.textInput.SetValue("many")
	m = press(m, "enter")
	if m.errorMsg != "expected integer value" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}

	m.textInput.SetValue("4")
	m = press(m, "enter")
	if m.editing {
		t.Error("still editing after valid value")
	}
	if got := v.GetInt("research.default_searches"); got != 4 {
		t.Errorf("default_searches = %d, want 4", got)
	}
}

func TestSelectAndReset(t *testing.T) {
	m, v, _ := newTestModel(t)

	// Search > Provider
	m.categoryIndex, m.itemIndex = 1, 0
	start := m.currentSelectIndex()
	m = press(m, "enter", "down", "enter")

	opts := m.currentItem().Options
	want := opts[(start+1)%len(opts)]
	if got := v.GetString("search.provider"); got != want {
		t.Errorf("search.provider = %q, want %q", got, want)
	}

	m = press(m, "r")
	if got := v.GetString("search.provider"); got != "duckduckgo" {
		t.Errorf("after reset search.provider = %q, want duckduckgo", got)
	}
	if !strings.Contains(m.infoMsg, "Reset Provider") {
		t.Errorf("infoMsg = %q", m.infoMsg)
	}
}

func TestEscCancelsEdit(t *testing.T) {
	m, v, _ := newTestModel(t)

	m = press(m, "down", "enter")
	m.textInput.SetValue("other-model")
	m = press(m, "esc")

	if m.editing {
		t.Error("esc did not cancel editing")
	}
	if got := v.GetString("llm.model"); got == "other-model" {
		t.Error("cancelled edit was applied")
	}
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t)
	view := m.View()

	for _, want := range []string{"sift configuration", "[ Research ]", "Default Searches", "(not created)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(m, "q")
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}
