package research

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/search"
	"github.com/Iron-Ham/sift/internal/testutil"
)

func summarizer() *testutil.ScriptedProvider {
	return testutil.NewScriptedProvider("m", func(call testutil.Call) (string, error) {
		term, _, _ := strings.Cut(strings.TrimPrefix(call.User, "Search term: "), "\n")
		return "<think>hmm</think>Summary of " + term, nil
	})
}

func TestSearcher_Run(t *testing.T) {
	engine := &testutil.StaticSearch{
		Errors: map[string]error{"broken": errors.New("network down")},
	}
	model := summarizer()
	items := []WebSearchItem{
		{Query: "alpha", Reason: "first"},
		{Query: "broken", Reason: "fails"},
		{Query: "gamma", Reason: "third"},
	}

	var mu sync.Mutex
	var progress []int
	var failures int
	summaries := NewSearcher(engine, model, nil, 0).Run(context.Background(), items, func(item WebSearchItem, completed, total int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		progress = append(progress, completed)
		if err != nil {
			failures++
		}
	})

	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].Item.Query != "alpha" || summaries[1].Item.Query != "gamma" {
		t.Errorf("summaries not in plan order: %+v", summaries)
	}
	if summaries[0].Summary != "Summary of alpha" {
		t.Errorf("Summary = %q, want think block stripped", summaries[0].Summary)
	}
	if len(progress) != 3 || progress[0] != 1 || progress[2] != 3 {
		t.Errorf("progress = %v, want 1..3", progress)
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}

	calls := model.Calls()
	if len(calls) != 2 {
		t.Fatalf("model calls = %d, want 2", len(calls))
	}
	for _, c := range calls {
		if !strings.Contains(c.User, "Reason for searching: ") {
			t.Errorf("summary input missing reason: %q", c.User)
		}
	}
}

// flakySearch fails the first failures calls with err, then returns one hit.
type flakySearch struct {
	err      error
	failures int

	mu    sync.Mutex
	calls int
}

func (f *flakySearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []search.Result{{Title: query, URL: "https://example.com/" + query}}, nil
}

func (f *flakySearch) Name() string { return "flaky" }

func TestSearcher_RetriesRetryableFailures(t *testing.T) {
	rateLimited := errors.NewSearchError("throttled", errors.ErrSearchRateLimited).WithProvider("flaky")
	rejected := errors.NewSearchError("bad query", errors.New("HTTP 400")).WithProvider("flaky")

	tests := []struct {
		name      string
		err       error
		failures  int
		wantCalls int
		wantFound bool
	}{
		{"succeeds first time", nil, 0, 1, true},
		{"rate limit retried", rateLimited, 1, 2, true},
		{"rate limit persists", rateLimited, 5, searchAttempts, false},
		{"non-retryable not repeated", rejected, 5, 1, false},
		{"timeout retried", errors.NewTimeoutError("search", time.Second), 1, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &flakySearch{err: tt.err, failures: tt.failures}
			s := NewSearcher(engine, summarizer(), nil, 1)
			s.retryDelay = time.Millisecond

			summaries := s.Run(context.Background(), []WebSearchItem{{Query: "q"}}, nil)
			if engine.calls != tt.wantCalls {
				t.Errorf("engine calls = %d, want %d", engine.calls, tt.wantCalls)
			}
			if found := len(summaries) == 1; found != tt.wantFound {
				t.Errorf("summary found = %v, want %v", found, tt.wantFound)
			}
		})
	}
}

func TestSearcher_LogsFailuresBySeverity(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	engine := &testutil.StaticSearch{Errors: map[string]error{
		"throttled": errors.NewSearchError("throttled", errors.ErrSearchRateLimited),
	}}
	model := testutil.NewScriptedProvider("m", func(call testutil.Call) (string, error) {
		return "", errors.NewLLMError("bad request", errors.ErrLLMRequest)
	})
	s := NewSearcher(engine, model, logger, 1)
	s.retryDelay = time.Millisecond
	s.Run(context.Background(), []WebSearchItem{{Query: "throttled"}, {Query: "fine"}}, nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := testutil.ReadFile(t, filepath.Join(dir, logging.LogFileName))
	for _, want := range []string{
		`"level":"WARN","msg":"search item failed","query":"throttled","stage":"search"`,
		`"level":"ERROR","msg":"search item failed","query":"fine","stage":"summarize"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestSearcher_EmptySummaryDropped(t *testing.T) {
	model := testutil.NewScriptedProvider("m", func(testutil.Call) (string, error) { return "<think>x</think>  ", nil })
	summaries := NewSearcher(&testutil.StaticSearch{}, model, nil, 1).Run(context.Background(), []WebSearchItem{{Query: "q"}}, nil)
	if len(summaries) != 0 {
		t.Errorf("summaries = %+v, want none", summaries)
	}
}

func TestSearcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &testutil.StaticSearch{}
	summaries := NewSearcher(engine, summarizer(), nil, 2).Run(ctx, []WebSearchItem{{Query: "a"}, {Query: "b"}}, nil)
	if len(summaries) != 0 {
		t.Errorf("summaries = %d, want 0", len(summaries))
	}
	if len(engine.Queries()) != 0 {
		t.Errorf("searched %v after cancellation", engine.Queries())
	}
}

func TestFormatSummaries(t *testing.T) {
	if got := formatSummaries(nil); !strings.Contains(got, "no search results") {
		t.Errorf("formatSummaries(nil) = %q", got)
	}

	got := formatSummaries([]SearchSummary{{
		Item:    WebSearchItem{Query: "go"},
		Results: []search.Result{{Title: "Go", URL: "https://go.dev"}},
		Summary: "Go is a language.",
	}})
	for _, want := range []string{"### Search 1: go", "Go is a language.", "- Source: [Go](https://go.dev)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatSummaries() missing %q:\n%s", want, got)
		}
	}
}
