package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "research.default_searches")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Search count bounds shared with the research flow.
const (
	MinSearches = 1
	MaxSearches = 5
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLLMProviders returns the supported language model backends
func ValidLLMProviders() []string {
	return []string{"openai", "anthropic", "gemini", "vertex"}
}

// ValidSearchProviders returns the supported search backends
func ValidSearchProviders() []string {
	return []string{"brave", "duckduckgo", "tavily"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateSearch()...)
	errs = append(errs, c.validateResearch()...)
	errs = append(errs, c.validateDebate()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func oneOf(field, value string, valid []string) []ValidationError {
	if slices.Contains(valid, value) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}

func duration(field, value string) []ValidationError {
	if value == "" {
		return nil
	}
	if d, err := time.ParseDuration(value); err != nil || d <= 0 {
		return []ValidationError{{Field: field, Value: value, Message: "must be a positive duration such as 30s or 5m"}}
	}
	return nil
}

func (c *Config) validateLLM() []ValidationError {
	errs := oneOf("llm.provider", c.LLM.Provider, ValidLLMProviders())

	if strings.TrimSpace(c.LLM.Model) == "" {
		errs = append(errs, ValidationError{Field: "llm.model", Value: c.LLM.Model, Message: "must not be empty"})
	}
	if c.LLM.Provider == "openai" && !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		errs = append(errs, ValidationError{Field: "llm.base_url", Value: c.LLM.BaseURL, Message: "must be an http(s) URL"})
	}
	if c.LLM.Provider == "vertex" && strings.TrimSpace(c.LLM.Project) == "" {
		errs = append(errs, ValidationError{Field: "llm.project", Value: c.LLM.Project, Message: "is required for the vertex provider"})
	}
	errs = append(errs, duration("llm.timeout", c.LLM.Timeout)...)
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, ValidationError{Field: "llm.max_retries", Value: c.LLM.MaxRetries, Message: "must be non-negative"})
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, ValidationError{Field: "llm.max_tokens", Value: c.LLM.MaxTokens, Message: "must be at least 1"})
	}
	if strings.TrimSpace(c.LLM.Temperature) != "" {
		if t, ok := c.LLM.SamplingTemperature(); !ok || t < 0 || t > 2 {
			errs = append(errs, ValidationError{Field: "llm.temperature", Value: c.LLM.Temperature, Message: "must be a number between 0 and 2"})
		}
	}
	return errs
}

func (c *Config) validateSearch() []ValidationError {
	errs := oneOf("search.provider", c.Search.Provider, ValidSearchProviders())

	if c.Search.MaxResults < 1 || c.Search.MaxResults > 20 {
		errs = append(errs, ValidationError{Field: "search.max_results", Value: c.Search.MaxResults, Message: "must be between 1 and 20"})
	}
	errs = append(errs, duration("search.timeout", c.Search.Timeout)...)
	return errs
}

func (c *Config) validateResearch() []ValidationError {
	var errs []ValidationError
	if c.Research.DefaultSearches < MinSearches || c.Research.DefaultSearches > MaxSearches {
		errs = append(errs, ValidationError{
			Field:   "research.default_searches",
			Value:   c.Research.DefaultSearches,
			Message: fmt.Sprintf("must be between %d and %d", MinSearches, MaxSearches),
		})
	}
	if strings.TrimSpace(c.Research.OutputDir) == "" {
		errs = append(errs, ValidationError{Field: "research.output_dir", Value: c.Research.OutputDir, Message: "must not be empty"})
	}
	if c.Research.MaxConcurrency < 0 {
		errs = append(errs, ValidationError{Field: "research.max_concurrency", Value: c.Research.MaxConcurrency, Message: "must be non-negative"})
	}
	return errs
}

func (c *Config) validateDebate() []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(c.Debate.OutputDir) == "" {
		errs = append(errs, ValidationError{Field: "debate.output_dir", Value: c.Debate.OutputDir, Message: "must not be empty"})
	}
	if c.Debate.ChunkSentences < 1 {
		errs = append(errs, ValidationError{Field: "debate.chunk_sentences", Value: c.Debate.ChunkSentences, Message: "must be at least 1"})
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	switch {
	case c.Logging.MaxSizeMB <= 0:
		errs = append(errs, ValidationError{Field: "logging.max_size_mb", Value: c.Logging.MaxSizeMB, Message: "must be positive"})
	case c.Logging.MaxSizeMB > maxLogSizeMB:
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "logging.max_backups", Value: c.Logging.MaxBackups, Message: "must be non-negative"})
	}
	return errs
}
