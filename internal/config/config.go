package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete sift configuration
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Research ResearchConfig `mapstructure:"research" yaml:"research"`
	Debate   DebateConfig   `mapstructure:"debate" yaml:"debate"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
	UI       UIConfig       `mapstructure:"ui" yaml:"ui"`
}

// LLMConfig selects the language model backend
type LLMConfig struct {
	// Provider is the backend to call: "openai" (any OpenAI-compatible endpoint),
	// "anthropic", "gemini" or "vertex"
	Provider string `mapstructure:"provider" yaml:"provider"`
	// Model is the default model name for every role
	Model string `mapstructure:"model" yaml:"model"`
	// BaseURL is the OpenAI-compatible endpoint (ignored by the other providers)
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
	// Timeout bounds a single model call, as a Go duration string
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// MaxRetries is the number of retries on 429 and 5xx responses
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// Project is the Google Cloud project used by the vertex provider
	Project string `mapstructure:"project" yaml:"project"`
	// Location is the Google Cloud region used by the vertex provider
	Location string `mapstructure:"location" yaml:"location"`
	// MaxTokens caps completion length for backends that require a cap
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
	// Temperature is the sampling temperature; empty leaves the backend default
	Temperature string `mapstructure:"temperature" yaml:"temperature"`
}

// SearchConfig selects the web search backend
type SearchConfig struct {
	// Provider is one of "brave", "duckduckgo", "tavily"
	Provider string `mapstructure:"provider" yaml:"provider"`
	// MaxResults caps results per query
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`
	// Timeout bounds a single search request
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// ResearchConfig controls the research assistant flow
type ResearchConfig struct {
	// DefaultSearches is used when no search count is given (1-5)
	DefaultSearches int `mapstructure:"default_searches" yaml:"default_searches"`
	// Clarify enables the follow-up question step
	Clarify bool `mapstructure:"clarify" yaml:"clarify"`
	// OutputDir is where reports are exported
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// MaxConcurrency bounds searches in flight; 0 runs every search at once
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
}

// DebateConfig controls the debate pipeline
type DebateConfig struct {
	// OutputDir receives propose.md, oppose.md and decide.md
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// Oppose runs the AGAINST debater between propose and decide
	Oppose bool `mapstructure:"oppose" yaml:"oppose"`
	// ChunkSentences is the number of sentences per conversation turn
	ChunkSentences int `mapstructure:"chunk_sentences" yaml:"chunk_sentences"`
	// DebaterModel overrides llm.model for the debaters
	DebaterModel string `mapstructure:"debater_model" yaml:"debater_model"`
	// JudgeModel overrides llm.model for the judge
	JudgeModel string `mapstructure:"judge_model" yaml:"judge_model"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Enabled writes JSON logs to the state directory
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB rotates the log file at this size
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// TracingConfig controls Langfuse tracing. Credentials come from
// LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// UIConfig controls terminal output
type UIConfig struct {
	// Plain disables the interactive terminal UI
	Plain bool `mapstructure:"plain" yaml:"plain"`
	// ThemeFile is an optional YAML color theme, reloaded when it changes
	ThemeFile string `mapstructure:"theme_file" yaml:"theme_file"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			BaseURL:    "https://api.openai.com/v1",
			APIKeyEnv:  "OPENAI_API_KEY",
			Timeout:    "5m",
			MaxRetries: 5,
			Location:   "us-central1",
			MaxTokens:  4096,
		},
		Search: SearchConfig{
			Provider:   "duckduckgo",
			MaxResults: 5,
			Timeout:    "15s",
		},
		Research: ResearchConfig{
			DefaultSearches: 3,
			Clarify:         true,
			OutputDir:       "reports",
		},
		Debate: DebateConfig{
			OutputDir:      "output",
			Oppose:         true,
			ChunkSentences: 2,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// RequestTimeout parses LLM.Timeout, falling back to five minutes.
func (c *LLMConfig) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// SamplingTemperature parses LLM.Temperature. ok is false when it is unset
// or malformed.
func (c *LLMConfig) SamplingTemperature() (float64, bool) {
	t, err := strconv.ParseFloat(strings.TrimSpace(c.Temperature), 64)
	if err != nil {
		return 0, false
	}
	return t, true
}

// RequestTimeout parses Search.Timeout, falling back to fifteen seconds.
func (c *SearchConfig) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}

// ModelFor returns the override when set, otherwise the default model.
func (c *Config) ModelFor(override string) string {
	if override != "" {
		return override
	}
	return c.LLM.Model
}

// SetDefaults registers default values with viper
func SetDefaults() {
	d := Default()

	viper.SetDefault("llm.provider", d.LLM.Provider)
	viper.SetDefault("llm.model", d.LLM.Model)
	viper.SetDefault("llm.base_url", d.LLM.BaseURL)
	viper.SetDefault("llm.api_key_env", d.LLM.APIKeyEnv)
	viper.SetDefault("llm.timeout", d.LLM.Timeout)
	viper.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	viper.SetDefault("llm.project", d.LLM.Project)
	viper.SetDefault("llm.location", d.LLM.Location)
	viper.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	viper.SetDefault("llm.temperature", d.LLM.Temperature)

	viper.SetDefault("search.provider", d.Search.Provider)
	viper.SetDefault("search.max_results", d.Search.MaxResults)
	viper.SetDefault("search.timeout", d.Search.Timeout)

	viper.SetDefault("research.default_searches", d.Research.DefaultSearches)
	viper.SetDefault("research.clarify", d.Research.Clarify)
	viper.SetDefault("research.output_dir", d.Research.OutputDir)
	viper.SetDefault("research.max_concurrency", d.Research.MaxConcurrency)

	viper.SetDefault("debate.output_dir", d.Debate.OutputDir)
	viper.SetDefault("debate.oppose", d.Debate.Oppose)
	viper.SetDefault("debate.chunk_sentences", d.Debate.ChunkSentences)
	viper.SetDefault("debate.debater_model", d.Debate.DebaterModel)
	viper.SetDefault("debate.judge_model", d.Debate.JudgeModel)

	viper.SetDefault("logging.enabled", d.Logging.Enabled)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", d.Logging.MaxBackups)

	viper.SetDefault("tracing.enabled", d.Tracing.Enabled)

	viper.SetDefault("ui.plain", d.UI.Plain)
	viper.SetDefault("ui.theme_file", d.UI.ThemeFile)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// the loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sift")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sift"
	}
	return filepath.Join(home, ".config", "sift")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory holding logs and debate transcripts.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sift")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sift"
	}
	return filepath.Join(home, ".local", "state", "sift")
}

// sectionComments documents each top-level section in rendered config files.
var sectionComments = map[string]string{
	"llm":      "Language model backend: openai, anthropic, gemini or vertex. API keys are read from the variable named by api_key_env.",
	"search":   "Web search backend: brave (BRAVE_API_KEY), duckduckgo (no key), tavily (TAVILY_API_KEY).",
	"research": "Research assistant defaults. default_searches must be between 1 and 5; max_concurrency 0 runs all searches at once.",
	"debate":   "Debate pipeline. Artifacts are written to output_dir in the order propose, oppose, decide.",
	"logging":  "JSON debug logs, rotated by size.",
	"tracing":  "Langfuse tracing. Set LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY.",
	"ui":       "Terminal output.",
}

// RenderYAML renders cfg as a commented YAML document.
func RenderYAML(cfg *Config) ([]byte, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	root.HeadComment = "sift configuration"
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if c, ok := sectionComments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// KeyKind describes the value type of a settable key.
type KeyKind string

const (
	KindString KeyKind = "string"
	KindInt    KeyKind = "int"
	KindBool   KeyKind = "bool"
)

// SettableKeys lists the keys accepted by "sift config set".
func SettableKeys() map[string]KeyKind {
	return map[string]KeyKind{
		"llm.provider":              KindString,
		"llm.model":                 KindString,
		"llm.base_url":              KindString,
		"llm.api_key_env":           KindString,
		"llm.timeout":               KindString,
		"llm.max_retries":           KindInt,
		"llm.project":               KindString,
		"llm.location":              KindString,
		"llm.max_tokens":            KindInt,
		"llm.temperature":           KindString,
		"search.provider":           KindString,
		"search.max_results":        KindInt,
		"search.timeout":            KindString,
		"research.default_searches": KindInt,
		"research.clarify":          KindBool,
		"research.output_dir":       KindString,
		"research.max_concurrency":  KindInt,
		"debate.output_dir":         KindString,
		"debate.oppose":             KindBool,
		"debate.chunk_sentences":    KindInt,
		"debate.debater_model":      KindString,
		"debate.judge_model":        KindString,
		"logging.enabled":           KindBool,
		"logging.level":             KindString,
		"logging.max_size_mb":       KindInt,
		"logging.max_backups":       KindInt,
		"tracing.enabled":           KindBool,
		"ui.plain":                  KindBool,
		"ui.theme_file":             KindString,
	}
}
