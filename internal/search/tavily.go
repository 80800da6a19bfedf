package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Iron-Ham/sift/internal/errors"
)

const tavilyEndpoint = "https://api.tavily.com/search"

const tavilyMaxAttempts = 3

// Tavily uses the Tavily search API.
type Tavily struct {
	apiKey    string
	opts      options
	retryWait time.Duration
}

// NewTavily creates a Tavily provider.
func NewTavily(apiKey string, opts ...Option) *Tavily {
	return &Tavily{apiKey: apiKey, opts: newOptions(tavilyEndpoint, opts), retryWait: 2 * time.Second}
}

// Name returns "tavily".
func (t *Tavily) Name() string { return "tavily" }

// Search posts query to Tavily, retrying 429 responses with a linear backoff.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, t.searchError(query, "TAVILY_API_KEY is not set", errors.ErrMissingAPIKey)
	}

	body, err := json.Marshal(map[string]any{
		"query":        query,
		"max_results":  t.opts.maxResults,
		"search_depth": "basic",
	})
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.apiKey)

		resp, err := t.opts.client.Do(req)
		if err != nil {
			return nil, t.searchError(query, "request failed", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if attempt >= tavilyMaxAttempts {
				return nil, t.searchError(query, "rate limited", errors.ErrSearchRateLimited)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * t.retryWait):
			}
			continue
		}

		results, err := decodeTavily(resp)
		if err != nil {
			return nil, t.searchError(query, "bad response", err)
		}
		return capResults(results, t.opts.maxResults), nil
	}
}

func decodeTavily(resp *http.Response) ([]Result, error) {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

func (t *Tavily) searchError(query, msg string, cause error) error {
	return errors.NewSearchError(msg, cause).WithProvider(t.Name()).WithQuery(query)
}
