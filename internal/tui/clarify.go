package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sift/internal/research"
	"github.com/Iron-Ham/sift/internal/tui/styles"
)

// ClarifyModel asks the follow-up questions of a ClarificationPlan one at a
// time.
//
// Keys: enter records the typed answer (blank is allowed), ctrl+n skips the
// current question, ctrl+s skips every question, esc or ctrl+c aborts.
type ClarifyModel struct {
	plan    *research.ClarificationPlan
	input   textinput.Model
	index   int
	answers []research.Answer
	skipped bool
	aborted bool
	done    bool
}

// NewClarifyModel creates a model for plan.
func NewClarifyModel(plan *research.ClarificationPlan) ClarifyModel {
	ti := textinput.New()
	ti.Placeholder = "Your answer"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	return ClarifyModel{plan: plan, input: ti}
}

// Result returns the user's response, or nil if they aborted.
func (m ClarifyModel) Result() *research.Clarification {
	if m.aborted {
		return nil
	}
	return &research.Clarification{
		Skipped: m.skipped,
		Answers: append([]research.Answer(nil), m.answers...),
		Plan:    m.plan,
	}
}

func (m ClarifyModel) Init() tea.Cmd {
	if len(m.plan.Questions) == 0 {
		return tea.Quit
	}
	return textinput.Blink
}

func (m ClarifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit

	case "ctrl+s":
		m.skipped = true
		m.answers = nil
		m.done = true
		return m, tea.Quit

	case "ctrl+n":
		return m.record(research.AnswerSkipped)

	case "enter":
		return m.record(strings.TrimSpace(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// record stores answer for the current question and advances.
func (m ClarifyModel) record(answer string) (tea.Model, tea.Cmd) {
	m.answers = append(m.answers, research.Answer{
		Question: m.plan.Questions[m.index].Question,
		Answer:   answer,
	})
	m.input.SetValue("")
	m.index++
	if m.index >= len(m.plan.Questions) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ClarifyModel) View() string {
	if m.done || m.aborted || m.index >= len(m.plan.Questions) {
		return ""
	}

	var b strings.Builder
	if m.index == 0 {
		b.WriteString(styles.Title.Render("A few questions before researching"))
		b.WriteString("\n")
		if r := m.plan.Assessment.Reasoning; r != "" {
			b.WriteString(styles.Subtitle.Render(r))
			b.WriteString("\n\n")
		}
	}

	q := m.plan.Questions[m.index]
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Question %d of %d", m.index+1, len(m.plan.Questions))))
	b.WriteString("\n")
	b.WriteString(styles.Question.Render(q.Question))
	b.WriteString("\n")
	if q.Purpose != "" {
		b.WriteString(styles.Subtitle.Render(q.Purpose))
		b.WriteString("\n")
	}
	b.WriteString(styles.Prompt.Render("> ") + m.input.View())
	b.WriteString("\n")
	b.WriteString(styles.HelpBar.Render(strings.Join([]string{
		styles.HelpItem("enter", "answer"),
		styles.HelpItem("ctrl+n", "skip question"),
		styles.HelpItem("ctrl+s", "skip all"),
		styles.HelpItem("esc", "cancel"),
	}, "  ")))
	return b.String()
}

// RunClarify asks plan's questions on the terminal. It returns ErrCanceled
// if the user aborts.
func RunClarify(plan *research.ClarificationPlan, in io.Reader, out io.Writer) (*research.Clarification, error) {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(NewClarifyModel(plan), opts...).Run()
	if err != nil {
		return nil, err
	}
	result := final.(ClarifyModel).Result()
	if result == nil {
		return nil, ErrCanceled
	}
	return result, nil
}
