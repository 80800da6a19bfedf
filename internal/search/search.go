// Package search provides the web search backends used by the research
// assistant: Brave, DuckDuckGo (no key required) and Tavily.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider runs a web search.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Name() string
}

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// DefaultMaxResults caps results per query unless overridden.
const DefaultMaxResults = 5

type options struct {
	client     *http.Client
	baseURL    string
	maxResults int
}

// Option configures a Provider.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithBaseURL points the provider at another endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithMaxResults caps the number of results returned per query.
func WithMaxResults(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

func newOptions(baseURL string, opts []Option) options {
	o := options{
		client:     &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FormatResults renders results as a numbered Markdown list for prompts.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, r.Title, r.URL)
		if s := strings.TrimSpace(r.Snippet); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func capResults(results []Result, n int) []Result {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
