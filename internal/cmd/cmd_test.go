package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/pipeline"
	"github.com/Iron-Ham/sift/internal/search"
	"github.com/Iron-Ham/sift/internal/testutil"
)

const (
	askQuestions = `{"assessment":{"complexity":3,"reasoning":"broad"},
		"questions":[{"question":"Which region?","purpose":"scope"}],
		"should_ask_questions":true}`
	noQuestions = `{"assessment":{"complexity":1,"reasoning":"clear"},"questions":[],"should_ask_questions":false}`
	oneSearch   = `{"searches":[{"reason":"overview","query":"heat pumps cold"}]}`
	report      = `{"short_summary":"They work.","markdown_report":"## Findings\nHeat pumps work below freezing.","follow_up_questions":["Cost?"]}`
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestEnvironment points config and state at temp dirs and resets viper.
func setupTestEnvironment(t *testing.T) (configHome, stateHome string) {
	t.Helper()

	configHome = t.TempDir()
	stateHome = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", stateHome)

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
	return configHome, stateHome
}

// useFakes swaps the provider factories for scripted backends.
func useFakes(t *testing.T, model llm.Provider) *testutil.StaticSearch {
	t.Helper()

	engine := &testutil.StaticSearch{}
	prevProvider, prevSearch := newProvider, newSearch
	newProvider = func(ctx context.Context, cfg *config.Config, opts ...llm.Option) (llm.Provider, error) {
		return model, nil
	}
	newSearch = func(cfg *config.Config, opts ...search.Option) (search.Provider, error) {
		return engine, nil
	}
	t.Cleanup(func() {
		newProvider, newSearch = prevProvider, prevSearch
	})
	return engine
}

func researchModel(clarify string) *testutil.ScriptedProvider {
	return testutil.NewScriptedProvider("gpt-4o-mini", testutil.Route(map[string]string{
		"research query analyst":      clarify,
		"expert research strategist":  oneSearch,
		"You are a research assistant": "summary",
		"senior researcher":           report,
	}, ""))
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "sift" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "sift")
	}

	expectedCmds := []string{"research", "debate", "config", "logs", "version"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(output, "sift "+Version) {
		t.Errorf("version output = %q", output)
	}
}

func TestConfigInitAndSet(t *testing.T) {
	configHome, _ := setupTestEnvironment(t)
	configFile := filepath.Join(configHome, "sift", "config.yaml")

	output, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, configFile) {
		t.Errorf("init output should name %s, got: %s", configFile, output)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second config init should fail")
	}

	output, err = executeCommand(rootCmd, "config", "set", "research.default_searches", "5")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(output, "Set research.default_searches = 5") {
		t.Errorf("set output = %q", output)
	}
	if got := testutil.ReadFile(t, configFile); !strings.Contains(got, "default_searches: 5") {
		t.Errorf("config file missing new value:\n%s", got)
	}

	output, err = executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(output, "default_searches: 5") {
		t.Errorf("show should reflect saved value, got:\n%s", output)
	}
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	configHome, _ := setupTestEnvironment(t)
	configFile := filepath.Join(configHome, "sift", "config.yaml")

	tests := []struct {
		name     string
		key      string
		val      string
		want     string
		sentinel error
	}{
		{"unknown key", "nope.key", "1", "unknown configuration key", errors.ErrInvalidInput},
		{"not a bool", "debate.oppose", "maybe", "expected true or false", errors.ErrInvalidInput},
		{"not an int", "research.default_searches", "lots", "expected integer", errors.ErrInvalidInput},
		{"out of range", "research.default_searches", "9", "invalid value", errors.ErrInvalidSearchCount},
		{"unknown provider", "llm.provider", "palm", "invalid value", errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(rootCmd, "config", "set", tt.key, tt.val)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			var verr *errors.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.key {
				t.Errorf("expected ValidationError for field %s, got %v", tt.key, err)
			}
			if !errors.IsUserFacing(err) {
				t.Error("config errors should be user-facing")
			}
		})
	}

	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		t.Error("rejected values should not create a config file")
	}
}

func TestConfigPath(t *testing.T) {
	configHome, stateHome := setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(output, filepath.Join(configHome, "sift", "config.yaml")) {
		t.Errorf("path output missing config file:\n%s", output)
	}
	if !strings.Contains(output, filepath.Join(stateHome, "sift", "logs")) {
		t.Errorf("path output missing log dir:\n%s", output)
	}
}

func TestThemeExportAndCheck(t *testing.T) {
	setupTestEnvironment(t)
	path := filepath.Join(t.TempDir(), "theme.yaml")

	if _, err := executeCommand(rootCmd, "config", "theme", "export", path); err != nil {
		t.Fatalf("theme export failed: %v", err)
	}
	output, err := executeCommand(rootCmd, "config", "theme", "check", path)
	if err != nil {
		t.Fatalf("theme check failed: %v", err)
	}
	if !strings.Contains(output, `"custom" is valid`) {
		t.Errorf("check output = %q", output)
	}

	bad := testutil.WriteFile(t, t.TempDir(), "bad.yaml", "name: bad\ncolors:\n  primary: red\n")
	if _, err := executeCommand(rootCmd, "config", "theme", "check", bad); err == nil {
		t.Error("expected invalid theme to fail")
	}
}

func TestRunResearch_Plain(t *testing.T) {
	setupTestEnvironment(t)
	model := researchModel(noQuestions)
	engine := useFakes(t, model)
	outDir := t.TempDir()

	var out bytes.Buffer
	opts := researchOptions{
		Query:     "heat pumps",
		Searches:  "1",
		Clarify:   true,
		OutputDir: outDir,
		Export:    true,
	}
	if err := runResearch(context.Background(), config.Default(), logging.NopLogger(), &out, opts); err != nil {
		t.Fatalf("runResearch() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Trace ID", "Report saved to", "Heat pumps work below freezing."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if q := engine.Queries(); len(q) != 1 || q[0] != "heat pumps cold" {
		t.Errorf("searched %v", q)
	}

	files, _ := filepath.Glob(filepath.Join(outDir, "heat-pumps-*.md"))
	if len(files) != 1 {
		t.Fatalf("exported reports = %v", files)
	}
	if body := testutil.ReadFile(t, files[0]); !strings.Contains(body, "query: heat pumps") {
		t.Errorf("report front-matter missing query:\n%s", body)
	}
}

func TestRunResearch_AnswersFileRoundTrip(t *testing.T) {
	setupTestEnvironment(t)
	model := researchModel(askQuestions)
	useFakes(t, model)
	outDir := t.TempDir()

	var out bytes.Buffer
	opts := researchOptions{
		Query:     "heat pumps",
		Searches:  "1",
		Clarify:   true,
		OutputDir: outDir,
		Export:    true,
	}
	if err := runResearch(context.Background(), config.Default(), logging.NopLogger(), &out, opts); err != nil {
		t.Fatalf("first run error = %v", err)
	}

	path := filepath.Join(outDir, "clarify-heat-pumps.yaml")
	if !strings.Contains(out.String(), "--answers-file "+path) {
		t.Fatalf("output should explain how to continue:\n%s", out.String())
	}
	if len(model.CallsMatching("senior researcher")) != 0 {
		t.Fatal("report written before questions were answered")
	}

	answers := strings.Replace(testutil.ReadFile(t, path), `answer: ""`, `answer: Scandinavia`, 1)
	if err := os.WriteFile(path, []byte(answers), 0o644); err != nil {
		t.Fatal(err)
	}

	next := researchOptions{OutputDir: outDir, Export: true, Clarify: true, Searches: "1"}
	if err := applyAnswersFile(&next, path); err != nil {
		t.Fatalf("applyAnswersFile() error = %v", err)
	}
	if next.Query != "heat pumps" || next.Clarification == nil {
		t.Fatalf("resumed options = %+v", next)
	}

	out.Reset()
	if err := runResearch(context.Background(), config.Default(), logging.NopLogger(), &out, next); err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !strings.Contains(out.String(), "Report saved to") {
		t.Errorf("second run output:\n%s", out.String())
	}
	planCalls := model.CallsMatching("expert research strategist")
	if len(planCalls) != 1 || !strings.Contains(planCalls[0].User, "Scandinavia") {
		t.Errorf("planner should see the answer, calls = %+v", planCalls)
	}
}

func TestRunResearch_SkipClarification(t *testing.T) {
	setupTestEnvironment(t)
	model := researchModel(askQuestions)
	useFakes(t, model)

	var out bytes.Buffer
	opts := researchOptions{
		Query:             "heat pumps",
		Searches:          "1",
		Clarify:           true,
		SkipClarification: true,
		OutputDir:         t.TempDir(),
	}
	if err := runResearch(context.Background(), config.Default(), logging.NopLogger(), &out, opts); err != nil {
		t.Fatalf("runResearch() error = %v", err)
	}
	if len(model.CallsMatching("senior researcher")) != 1 {
		t.Error("report should be written after skipping questions")
	}
	if strings.Contains(out.String(), "Report saved to") {
		t.Error("report exported although export was off")
	}
}

func TestRunResearch_StructuredAgentsUseJSONMode(t *testing.T) {
	setupTestEnvironment(t)
	plain := researchModel(noQuestions)
	structured := researchModel(noQuestions)
	useFakes(t, plain)
	newProvider = func(ctx context.Context, cfg *config.Config, opts ...llm.Option) (llm.Provider, error) {
		if len(opts) > 0 {
			return structured, nil
		}
		return plain, nil
	}

	var out bytes.Buffer
	opts := researchOptions{Query: "heat pumps", Searches: "1", Clarify: true, OutputDir: t.TempDir()}
	if err := runResearch(context.Background(), config.Default(), logging.NopLogger(), &out, opts); err != nil {
		t.Fatalf("runResearch() error = %v", err)
	}

	tests := []struct {
		name     string
		provider *testutil.ScriptedProvider
		key      string
		want     int
	}{
		{"clarifier", structured, "research query analyst", 1},
		{"planner", structured, "expert research strategist", 1},
		{"writer", structured, "senior researcher", 1},
		{"summaries", plain, "You are a research assistant", 1},
		{"no structured calls on plain", plain, "senior researcher", 0},
	}
	for _, tt := range tests {
		if got := len(tt.provider.CallsMatching(tt.key)); got != tt.want {
			t.Errorf("%s calls = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRunDebate_Plain(t *testing.T) {
	setupTestEnvironment(t)
	model := testutil.NewScriptedProvider("gpt-4o-mini", testutil.Route(map[string]string{
		"compelling debater": "A strong case. \x1b[1mIt holds up.\x1b[0m",
		"fair judge":         "FOR wins.",
	}, ""))
	useFakes(t, model)
	outDir := t.TempDir()

	var out bytes.Buffer
	opts := debateOptions{
		Motion:       "Tabs beat spaces",
		Oppose:       true,
		OutputDir:    outDir,
		ShowCalls:    true,
		ShowLog:      true,
		Conversation: true,
	}
	if err := runDebate(context.Background(), config.Default(), logging.NopLogger(), &out, opts); err != nil {
		t.Fatalf("runDebate() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		pipeline.StatusProposing,
		"**Debater FOR**: A strong case.",
		"**Debater AGAINST**: A strong case.",
		"FOR wins.",
		pipeline.StatusComplete,
		"## Conversation",
		"## Logs\n\nA strong case. It holds up.",
		"Artifacts: ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if logs := got[strings.Index(got, "## Logs"):]; strings.Contains(logs, "\x1b[") {
		t.Errorf("log section kept escape sequences:\n%q", logs)
	}
	for _, name := range []string{"propose.md", "oppose.md", "decide.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
	}
	if len(model.Calls()) != 3 {
		t.Errorf("calls = %d, want 3", len(model.Calls()))
	}
}

func TestRunDebate_EmptyMotion(t *testing.T) {
	setupTestEnvironment(t)
	model := testutil.NewScriptedProvider("gpt-4o-mini", testutil.Route(nil, "unused"))
	useFakes(t, model)

	var out bytes.Buffer
	if err := runDebate(context.Background(), config.Default(), logging.NopLogger(), &out, debateOptions{Motion: "  "}); err != nil {
		t.Fatalf("runDebate() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != pipeline.EmptyMotionMessage {
		t.Errorf("output = %q", out.String())
	}
	if len(model.Calls()) != 0 {
		t.Error("no model call expected for an empty motion")
	}
}

func TestLogsCommand(t *testing.T) {
	setupTestEnvironment(t)
	resetLogsFlags := func() {
		logsSessionID, logsLevel, logsSince, logsComponent, logsGrep, logsExport = "", "", "", "", "", ""
		logsTail, logsFormat = 50, "text"
	}
	resetLogsFlags()
	t.Cleanup(resetLogsFlags)

	if _, err := executeCommand(rootCmd, "logs"); err == nil {
		t.Error("expected an error without a log file")
	}

	now := time.Now().UTC()
	lines := []string{
		`{"time":"` + now.Add(-2*time.Hour).Format(time.RFC3339Nano) + `","level":"INFO","msg":"old run","session_id":"a"}`,
		`{"time":"` + now.Add(-time.Minute).Format(time.RFC3339Nano) + `","level":"WARN","msg":"search retry","session_id":"b","component":"research"}`,
		`{"time":"` + now.Format(time.RFC3339Nano) + `","level":"DEBUG","msg":"event","session_id":"b"}`,
	}
	testutil.WriteFile(t, LogDir(), logging.LogFileName, strings.Join(lines, "\n")+"\n")

	output, err := executeCommand(rootCmd, "logs", "--level", "warn")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(output, "search retry") || strings.Contains(output, "old run") {
		t.Errorf("level filter output:\n%s", output)
	}

	resetLogsFlags()
	output, err = executeCommand(rootCmd, "logs", "--since", "1h", "--session", "b", "--format", "csv")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.HasPrefix(output, "timestamp,level,message") || strings.Count(output, "\n") != 3 {
		t.Errorf("csv output:\n%s", output)
	}

	resetLogsFlags()
	export := filepath.Join(t.TempDir(), "logs.json")
	output, err = executeCommand(rootCmd, "logs", "-n", "1", "--format", "json", "--export", export)
	if err != nil {
		t.Fatalf("logs export failed: %v", err)
	}
	if !strings.Contains(output, "Exported 1 entries") {
		t.Errorf("export output = %q", output)
	}
	if body := testutil.ReadFile(t, export); !strings.Contains(body, `"msg": "event"`) {
		t.Errorf("exported json:\n%s", body)
	}

	resetLogsFlags()
	if _, err := executeCommand(rootCmd, "logs", "--since", "yesterday"); err == nil {
		t.Error("expected invalid --since to fail")
	}
}
