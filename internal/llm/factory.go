package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
)

// defaultKeyEnv is used when llm.api_key_env still names the OpenAI
// variable but another provider is selected.
var defaultKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// APIKeyEnv returns the environment variable holding the key for cfg.
func APIKeyEnv(cfg config.LLMConfig) string {
	provider := strings.ToLower(cfg.Provider)
	if cfg.APIKeyEnv == "" || (cfg.APIKeyEnv == defaultKeyEnv[ProviderOpenAI] && provider != ProviderOpenAI) {
		return defaultKeyEnv[provider]
	}
	return cfg.APIKeyEnv
}

// NewFromConfig builds the configured Provider.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing config")
	}

	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.LLM.RequestTimeout()}),
		WithMaxRetries(cfg.LLM.MaxRetries),
		WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if t, ok := cfg.LLM.SamplingTemperature(); ok {
		base = append(base, WithTemperature(t))
	}
	opts = append(base, opts...)

	keyEnv := APIKeyEnv(cfg.LLM)
	apiKey := ""
	if keyEnv != "" {
		apiKey = os.Getenv(keyEnv)
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case ProviderOpenAI, "":
		// Local OpenAI-compatible servers such as Ollama accept requests without a key.
		if apiKey == "" && strings.Contains(cfg.LLM.BaseURL, "api.openai.com") {
			return nil, fmt.Errorf("openai: %w: set %s", errors.ErrMissingAPIKey, keyEnv)
		}
		return NewOpenAI(cfg.LLM.BaseURL, apiKey, cfg.LLM.Model, opts...), nil
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic: %w: set %s", errors.ErrMissingAPIKey, keyEnv)
		}
		return NewAnthropic(apiKey, cfg.LLM.Model, "", opts...)
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("gemini: %w: set %s", errors.ErrMissingAPIKey, keyEnv)
		}
		return NewGemini(ctx, apiKey, cfg.LLM.Model, opts...)
	case ProviderVertex:
		return NewVertex(ctx, cfg.LLM.Project, cfg.LLM.Location, cfg.LLM.Model, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownProvider, cfg.LLM.Provider)
	}
}
