package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/sift/internal/errors"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// braveMaxAttempts bounds retries after 429 responses.
const braveMaxAttempts = 4

// Brave limits each API key to one request per second. Instances sharing a
// key share a limiter.
var (
	braveLimitersMu sync.Mutex
	braveLimiters   = map[string]*rate.Limiter{}
)

func braveLimiterFor(apiKey string) *rate.Limiter {
	braveLimitersMu.Lock()
	defer braveLimitersMu.Unlock()
	l, ok := braveLimiters[apiKey]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 1)
		braveLimiters[apiKey] = l
	}
	return l
}

// Brave uses the Brave Search API.
type Brave struct {
	apiKey  string
	opts    options
	limiter *rate.Limiter
}

// NewBrave creates a Brave provider.
func NewBrave(apiKey string, opts ...Option) *Brave {
	return &Brave{apiKey: apiKey, opts: newOptions(braveEndpoint, opts), limiter: braveLimiterFor(apiKey)}
}

// Name returns "brave".
func (b *Brave) Name() string { return "brave" }

// Search runs query against Brave. 429 responses are retried after the
// delay advertised in X-RateLimit-Reset.
func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(b.apiKey) == "" {
		return nil, b.searchError(query, "BRAVE_API_KEY is not set", errors.ErrMissingAPIKey)
	}

	endpoint := b.opts.baseURL + "?" + url.Values{
		"q":     {query},
		"count": {strconv.Itoa(b.opts.maxResults)},
	}.Encode()
	for attempt := 1; ; attempt++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.apiKey)

		resp, err := b.opts.client.Do(req)
		if err != nil {
			return nil, b.searchError(query, "request failed", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := braveRetryDelay(resp.Header)
			_ = resp.Body.Close()
			if attempt >= braveMaxAttempts {
				return nil, b.searchError(query, "rate limited", errors.ErrSearchRateLimited)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		results, err := decodeBrave(resp)
		if err != nil {
			return nil, b.searchError(query, "bad response", err)
		}
		return capResults(results, b.opts.maxResults), nil
	}
}

func decodeBrave(resp *http.Response) ([]Result, error) {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: stripTags(r.Description)})
	}
	return results, nil
}

// braveRetryDelay reads X-RateLimit-Reset, a comma-separated list of reset
// times in seconds ("1, 1419704"), and returns the smallest. Defaults to 1s.
func braveRetryDelay(h http.Header) time.Duration {
	minReset := -1
	for part := range strings.SplitSeq(h.Get("X-RateLimit-Reset"), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			continue
		}
		if minReset < 0 || n < minReset {
			minReset = n
		}
	}
	if minReset <= 0 {
		return time.Second
	}
	return time.Duration(minReset) * time.Second
}

func (b *Brave) searchError(query, msg string, cause error) error {
	return errors.NewSearchError(msg, cause).WithProvider(b.Name()).WithQuery(query)
}
