package llm

import (
	"context"
	"testing"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
)

func TestAPIKeyEnv(t *testing.T) {
	tests := []struct {
		provider string
		env      string
		want     string
	}{
		{"openai", "OPENAI_API_KEY", "OPENAI_API_KEY"},
		{"anthropic", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
		{"gemini", "", "GEMINI_API_KEY"},
		{"gemini", "MY_GEMINI_KEY", "MY_GEMINI_KEY"},
	}
	for _, tt := range tests {
		got := APIKeyEnv(config.LLMConfig{Provider: tt.provider, APIKeyEnv: tt.env})
		if got != tt.want {
			t.Errorf("APIKeyEnv(%s, %q) = %q, want %q", tt.provider, tt.env, got, tt.want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		p, err := NewFromConfig(context.Background(), config.Default())
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		if _, ok := p.(*OpenAI); !ok {
			t.Errorf("got %T, want *OpenAI", p)
		}
		if p.Model() != "gpt-4o-mini" {
			t.Errorf("Model() = %q", p.Model())
		}
	})

	t.Run("sampling options", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		tests := []struct {
			name        string
			temperature string
			maxTokens   int
			extra       []Option
			wantTemp    *float64
			wantJSON    bool
		}{
			{"defaults", "", 4096, nil, nil, false},
			{"configured", "0.3", 1024, nil, ptr(0.3), false},
			{"caller overrides", "0.3", 1024, []Option{WithTemperature(0), WithJSONMode()}, ptr(0), true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := config.Default()
				cfg.LLM.Temperature = tt.temperature
				cfg.LLM.MaxTokens = tt.maxTokens
				p, err := NewFromConfig(context.Background(), cfg, tt.extra...)
				if err != nil {
					t.Fatalf("NewFromConfig() error = %v", err)
				}
				o := p.(*OpenAI).opts
				if o.maxTokens != tt.maxTokens {
					t.Errorf("maxTokens = %d, want %d", o.maxTokens, tt.maxTokens)
				}
				if (o.temperature == nil) != (tt.wantTemp == nil) || (o.temperature != nil && *o.temperature != *tt.wantTemp) {
					t.Errorf("temperature = %v, want %v", o.temperature, tt.wantTemp)
				}
				if o.jsonMode != tt.wantJSON {
					t.Errorf("jsonMode = %v, want %v", o.jsonMode, tt.wantJSON)
				}
			})
		}
	})

	t.Run("openai missing key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := NewFromConfig(context.Background(), config.Default())
		if !errors.Is(err, errors.ErrMissingAPIKey) {
			t.Errorf("error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("local endpoint without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := config.Default()
		cfg.LLM.BaseURL = "http://localhost:11434"
		if _, err := NewFromConfig(context.Background(), cfg); err != nil {
			t.Errorf("NewFromConfig() error = %v", err)
		}
	})

	t.Run("anthropic", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		cfg := config.Default()
		cfg.LLM.Provider = "anthropic"
		cfg.LLM.Model = "claude-sonnet-4-0"
		p, err := NewFromConfig(context.Background(), cfg)
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		if _, ok := p.(*Anthropic); !ok {
			t.Errorf("got %T, want *Anthropic", p)
		}
	})

	t.Run("gemini missing key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		cfg := config.Default()
		cfg.LLM.Provider = "gemini"
		if _, err := NewFromConfig(context.Background(), cfg); !errors.Is(err, errors.ErrMissingAPIKey) {
			t.Errorf("error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("vertex without project", func(t *testing.T) {
		cfg := config.Default()
		cfg.LLM.Provider = "vertex"
		if _, err := NewFromConfig(context.Background(), cfg); !errors.Is(err, errors.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.LLM.Provider = "watson"
		if _, err := NewFromConfig(context.Background(), cfg); !errors.Is(err, errors.ErrUnknownProvider) {
			t.Errorf("error = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := NewFromConfig(context.Background(), nil); err == nil {
			t.Error("expected error for nil config")
		}
	})
}

func ptr(f float64) *float64 { return &f }
