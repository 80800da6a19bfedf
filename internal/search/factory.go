package search

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
)

// NewFromConfig builds the provider named by cfg.Search.Provider. API keys
// are read from BRAVE_API_KEY and TAVILY_API_KEY.
func NewFromConfig(cfg *config.Config, opts ...Option) (Provider, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Search.RequestTimeout()}),
		WithMaxResults(cfg.Search.MaxResults),
	}
	opts = append(base, opts...)

	switch cfg.Search.Provider {
	case "brave":
		return NewBrave(os.Getenv("BRAVE_API_KEY"), opts...), nil
	case "duckduckgo", "":
		return NewDuckDuckGo(opts...), nil
	case "tavily":
		return NewTavily(os.Getenv("TAVILY_API_KEY"), opts...), nil
	default:
		return nil, fmt.Errorf("search provider %q: %w", cfg.Search.Provider, errors.ErrUnknownProvider)
	}
}
