package llm

import (
	"context"
	"net/http"
	"time"
)

// Provider generates a completion for a system prompt and a user message.
type Provider interface {
	Generate(ctx context.Context, system, user string) (Response, error)
	Model() string
}

// Response is the text produced by a single model call.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Name values accepted by NewFromConfig.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderVertex    = "vertex"
)

type options struct {
	httpClient  *http.Client
	maxRetries  int
	baseDelay   time.Duration
	temperature *float64
	jsonMode    bool
	maxTokens   int
}

func defaultOptions() options {
	return options{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		maxRetries: 5,
		baseDelay:  time.Second,
		maxTokens:  4096,
	}
}

// Option configures a Provider.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithMaxRetries sets how many times rate-limited or 5xx calls are retried.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithBaseDelay sets the first retry delay; each retry doubles it.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.baseDelay = d
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = &t
	}
}

// WithJSONMode asks the backend for a JSON object response.
func WithJSONMode() Option {
	return func(o *options) {
		o.jsonMode = true
	}
}

// WithMaxTokens caps the completion length where the backend requires it.
func WithMaxTokens(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// ModelSwitcher is implemented by providers that can address another model
// on the same backend without a new connection.
type ModelSwitcher interface {
	WithModel(model string) Provider
}

// WithModel returns a provider that calls model on the same backend as p.
// Decorators created by Recorder and Traced are preserved. If p cannot switch
// models, or model is empty, p is returned unchanged.
func WithModel(p Provider, model string) Provider {
	if model == "" || model == p.Model() {
		return p
	}
	if s, ok := p.(ModelSwitcher); ok {
		return s.WithModel(model)
	}
	return p
}
