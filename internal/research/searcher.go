package research

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/search"
)

const summarizeInstructions = `You are a research assistant. Given a search term, the reason it was searched and the web results, write a concise summary of the results in 2-3 paragraphs and under 300 words. Capture the main points only. Write tersely, without complete sentences where they are not needed, and without commentary of your own. The summary will be used by someone writing a report, so keep the facts and drop the fluff.`

// searchAttempts bounds calls per planned search when the engine reports a
// retryable failure such as a rate limit.
const searchAttempts = 2

// SearchSummary is the outcome of one planned search.
type SearchSummary struct {
	Item    WebSearchItem
	Results []search.Result
	Summary string
}

// Searcher runs planned searches concurrently and summarizes each one.
type Searcher struct {
	engine         search.Provider
	model          llm.Provider
	logger         *logging.Logger
	maxConcurrency int
	retryDelay     time.Duration
}

// NewSearcher creates a Searcher. maxConcurrency <= 0 runs every item at once.
func NewSearcher(engine search.Provider, model llm.Provider, logger *logging.Logger, maxConcurrency int) *Searcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Searcher{
		engine:         engine,
		model:          model,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		retryDelay:     2 * time.Second,
	}
}

// Run executes items concurrently. onProgress, if set, is called once per
// item in completion order with the number of finished items. Failed items
// are logged and omitted; the rest are returned in plan order.
func (s *Searcher) Run(ctx context.Context, items []WebSearchItem, onProgress func(item WebSearchItem, completed, total int, err error)) []SearchSummary {
	slots := make([]*SearchSummary, len(items))

	var mu sync.Mutex
	completed := 0

	p := pool.New()
	if s.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(s.maxConcurrency)
	}
	for i, item := range items {
		p.Go(func() {
			summary, err := s.runOne(ctx, item)
			if err != nil {
				s.logFailure(item, err)
			} else {
				slots[i] = summary
			}

			mu.Lock()
			completed++
			done := completed
			if onProgress != nil {
				onProgress(item, done, len(items), err)
			}
			mu.Unlock()
		})
	}
	p.Wait()

	out := make([]SearchSummary, 0, len(items))
	for _, sum := range slots {
		if sum != nil {
			out = append(out, *sum)
		}
	}
	return out
}

func (s *Searcher) runOne(ctx context.Context, item WebSearchItem) (*SearchSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := s.search(ctx, item.Query)
	if err != nil {
		return nil, err
	}

	input := fmt.Sprintf("Search term: %s\nReason for searching: %s\n\nResults:\n%s",
		item.Query, item.Reason, search.FormatResults(results))
	resp, err := s.model.Generate(llm.WithCallName(ctx, "search"), summarizeInstructions, input)
	if err != nil {
		return nil, errors.Wrap(err, "summarize")
	}

	summary := strings.TrimSpace(llm.StripThinkBlocks(resp.Text))
	if summary == "" {
		return nil, errors.Wrapf(errors.ErrEmptyCompletion, "summary for %q", item.Query)
	}
	return &SearchSummary{Item: item, Results: results, Summary: summary}, nil
}

// search calls the engine, repeating retryable failures up to searchAttempts.
func (s *Searcher) search(ctx context.Context, query string) ([]search.Result, error) {
	var err error
	for attempt := 1; ; attempt++ {
		var results []search.Result
		results, err = s.engine.Search(ctx, query)
		if err == nil {
			return results, nil
		}
		if attempt >= searchAttempts || !errors.IsRetryable(err) {
			return nil, err
		}
		s.logger.Debug("retrying search", "query", query, "attempt", attempt, "error", err.Error())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
}

// logFailure logs a dropped item at the level its error severity calls for.
func (s *Searcher) logFailure(item WebSearchItem, err error) {
	stage := "summarize"
	if errors.Is(err, errors.ErrSearchFailed) {
		stage = "search"
	}
	args := []any{"query", item.Query, "stage", stage, "error", err.Error()}
	if errors.GetSeverity(err) >= errors.SeverityError {
		s.logger.Error("search item failed", args...)
		return
	}
	s.logger.Warn("search item failed", args...)
}

// formatSummaries joins summaries for the writer prompt.
func formatSummaries(summaries []SearchSummary) string {
	if len(summaries) == 0 {
		return "(no search results were available)"
	}
	var b strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&b, "\n### Search %d: %s\n%s\n", i+1, s.Item.Query, s.Summary)
		for _, r := range s.Results {
			fmt.Fprintf(&b, "- Source: [%s](%s)\n", r.Title, r.URL)
		}
	}
	return b.String()
}
