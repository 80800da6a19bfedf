package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/Iron-Ham/sift/internal/errors"
)

const duckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"

const duckDuckGoUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ddgInterval is the minimum spacing between requests to the lite endpoint.
// The endpoint starts serving CAPTCHAs when hit faster than this.
const ddgInterval = time.Second

// ddgLimiter spaces requests to the lite endpoint across every instance.
var ddgLimiter = rate.NewLimiter(rate.Every(ddgInterval), 1)

// DuckDuckGo scrapes the DuckDuckGo lite HTML endpoint. No API key is needed.
type DuckDuckGo struct {
	opts options
}

// NewDuckDuckGo creates a DuckDuckGo provider.
func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	return &DuckDuckGo{opts: newOptions(duckDuckGoEndpoint, opts)}
}

// Name returns "duckduckgo".
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search posts query to the lite endpoint and parses the result table.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if err := ddgLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"q": {query}, "kl": {"wt-wt"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.opts.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", duckDuckGoUserAgent)

	resp, err := d.opts.client.Do(req)
	if err != nil {
		return nil, d.searchError(query, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusAccepted:
		return nil, d.searchError(query, "rate limited", errors.ErrSearchRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, d.searchError(query, fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, d.searchError(query, "unparseable page", err)
	}
	return capResults(parseDuckDuckGoLite(doc), d.opts.maxResults), nil
}

func (d *DuckDuckGo) searchError(query, msg string, cause error) error {
	return errors.NewSearchError(msg, cause).WithProvider(d.Name()).WithQuery(query)
}

// parseDuckDuckGoLite walks the lite results table. Each hit is an
// a.result-link followed by a td.result-snippet in a later row.
func parseDuckDuckGoLite(doc *html.Node) []Result {
	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				results = append(results, Result{
					Title: strings.TrimSpace(textContent(n)),
					URL:   resolveDuckDuckGoURL(attr(n, "href")),
				})
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = strings.Join(strings.Fields(textContent(n)), " ")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	kept := results[:0]
	for _, r := range results {
		if r.URL != "" && r.Title != "" {
			kept = append(kept, r)
		}
	}
	return kept
}

// resolveDuckDuckGoURL unwraps //duckduckgo.com/l/?uddg=<target> redirects.
func resolveDuckDuckGoURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for c := range strings.FieldsSeq(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// stripTags drops inline markup (Brave wraps matches in <strong>) and
// unescapes entities.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
