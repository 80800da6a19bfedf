// Package errors provides the error vocabulary shared by the research and
// debate pipelines. It defines sentinel errors for each subsystem, typed
// errors that carry provider or phase context, and classification helpers
// used by callers to decide between retrying, reporting, or aborting.
//
// # Error Types
//
// Domain errors describe failures in a specific subsystem:
//   - LLMError: a language model call failed (provider, model, HTTP status)
//   - SearchError: a web search call failed (provider, query)
//   - PipelineError: a research or debate phase failed (pipeline, phase)
//
// Semantic errors describe common conditions:
//   - ValidationError: user input or configuration was rejected
//   - TimeoutError: an operation ran past its deadline
//
// # Usage
//
//	err := errors.NewLLMError("chat completion failed", errors.ErrLLMRateLimited).
//		WithProvider("openai").WithStatus(429)
//
//	if errors.Is(err, errors.ErrLLMRateLimited) { ... }
//	if errors.IsRetryable(err) { ... }
//
// Callers that only need wrapping keep using fmt.Errorf with %w; the
// sentinels survive wrapping and remain matchable with Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions so callers import a single package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Input sentinel errors
var (
	// ErrEmptyQuery indicates that a research query was blank.
	ErrEmptyQuery = New("research query is empty")
	// ErrEmptyMotion indicates that a debate motion was blank.
	ErrEmptyMotion = New("debate motion is empty")
	// ErrInvalidSearchCount indicates a search count outside the accepted range.
	ErrInvalidSearchCount = New("search count out of range")
)

// Language model sentinel errors
var (
	// ErrLLMRequest indicates that the model endpoint rejected a request.
	ErrLLMRequest = New("language model request failed")
	// ErrLLMRateLimited indicates that the model endpoint throttled the caller.
	ErrLLMRateLimited = New("language model rate limited")
	// ErrEmptyCompletion indicates that the model returned no usable text.
	ErrEmptyCompletion = New("language model returned an empty completion")
	// ErrMalformedOutput indicates that structured model output could not be decoded.
	ErrMalformedOutput = New("language model output is malformed")
)

// Search sentinel errors
var (
	// ErrSearchFailed indicates that a search provider call failed.
	ErrSearchFailed = New("search failed")
	// ErrSearchRateLimited indicates that a search provider throttled the caller.
	ErrSearchRateLimited = New("search rate limited")
	// ErrMissingAPIKey indicates that a provider needs an API key that is not set.
	ErrMissingAPIKey = New("API key is missing")
)

// Configuration and output sentinel errors
var (
	// ErrUnknownProvider indicates a provider name that is not supported.
	ErrUnknownProvider = New("unknown provider")
	// ErrInvalidConfig indicates that configuration failed validation.
	ErrInvalidConfig = New("invalid configuration")
	// ErrExportFailed indicates that a report or artifact could not be written.
	ErrExportFailed = New("export failed")
	// ErrOutOfOrder indicates a debate turn taken out of sequence.
	ErrOutOfOrder = New("turn out of order")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// SiftError is implemented by every typed error in this package.
type SiftError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	// IsRetryable reports whether the operation may succeed if repeated.
	IsRetryable() bool
	// IsUserFacing reports whether the message is safe to show end users.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// LLMError describes a failed language model call.
//
// Example:
//
//	err := errors.NewLLMError("chat completion failed", errors.ErrLLMRequest).
//		WithProvider("openai").WithModel("gpt-4o-mini").WithStatus(400)
//	fmt.Println(err) // "llm error [provider=openai, model=gpt-4o-mini, status=400]: ..."
type LLMError struct {
	baseError
	Provider   string
	Model      string
	StatusCode int
}

// NewLLMError creates a new LLMError. Rate-limit causes are marked retryable.
func NewLLMError(message string, cause error) *LLMError {
	return &LLMError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  errors.Is(cause, ErrLLMRateLimited),
			userFacing: true,
		},
	}
}

// WithProvider adds the provider name to the error context.
func (e *LLMError) WithProvider(p string) *LLMError {
	e.Provider = p
	return e
}

// WithModel adds the model name to the error context.
func (e *LLMError) WithModel(m string) *LLMError {
	e.Model = m
	return e
}

// WithStatus adds the HTTP status code to the error context.
func (e *LLMError) WithStatus(code int) *LLMError {
	e.StatusCode = code
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *LLMError) WithRetryable(r bool) *LLMError {
	e.retryable = r
	return e
}

func (e *LLMError) Error() string {
	var parts []string
	if e.Provider != "" {
		parts = append(parts, "provider="+e.Provider)
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	return e.format("llm error", parts)
}

// Is checks if this error matches the target.
func (e *LLMError) Is(target error) bool {
	if _, ok := target.(*LLMError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SearchError describes a failed web search.
type SearchError struct {
	baseError
	Provider string
	Query    string
}

// NewSearchError creates a new SearchError. Rate-limit causes are marked retryable.
func NewSearchError(message string, cause error) *SearchError {
	return &SearchError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  errors.Is(cause, ErrSearchRateLimited),
			userFacing: true,
		},
	}
}

// WithProvider adds the provider name to the error context.
func (e *SearchError) WithProvider(p string) *SearchError {
	e.Provider = p
	return e
}

// WithQuery adds the search query to the error context.
func (e *SearchError) WithQuery(q string) *SearchError {
	e.Query = q
	return e
}

func (e *SearchError) Error() string {
	var parts []string
	if e.Provider != "" {
		parts = append(parts, "provider="+e.Provider)
	}
	if e.Query != "" {
		parts = append(parts, fmt.Sprintf("query=%q", e.Query))
	}
	return e.format("search error", parts)
}

// Is checks if this error matches the target.
func (e *SearchError) Is(target error) bool {
	if _, ok := target.(*SearchError); ok {
		return true
	}
	if target == ErrSearchFailed {
		return true
	}
	return e.baseError.Is(target)
}

// PipelineError describes a failed phase of the research or debate pipeline.
//
// Example:
//
//	err := errors.NewPipelineError("judge call failed", cause).
//		WithPipeline("debate").WithPhase("decide")
type PipelineError struct {
	baseError
	Pipeline string
	Phase    string
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(message string, cause error) *PipelineError {
	return &PipelineError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithPipeline names the pipeline (research or debate).
func (e *PipelineError) WithPipeline(name string) *PipelineError {
	e.Pipeline = name
	return e
}

// WithPhase names the phase that failed.
func (e *PipelineError) WithPhase(phase string) *PipelineError {
	e.Phase = phase
	return e
}

func (e *PipelineError) Error() string {
	var parts []string
	if e.Pipeline != "" {
		parts = append(parts, "pipeline="+e.Pipeline)
	}
	if e.Phase != "" {
		parts = append(parts, "phase="+e.Phase)
	}
	return e.format("pipeline error", parts)
}

// Is checks if this error matches the target.
func (e *PipelineError) Is(target error) bool {
	if _, ok := target.(*PipelineError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents rejected input or configuration.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the rejected value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that ran past its deadline.
//
// Example:
//
//	err := errors.NewTimeoutError("writer call", 2*time.Minute)
//	fmt.Println(err) // "timeout error: writer call (timeout: 2m0s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError. Timeouts are retryable.
func NewTimeoutError(operation string, d time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  d,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if target == ErrTimeout {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition:
// a SiftError reporting IsRetryable, or anything wrapping ErrTimeout,
// ErrLLMRateLimited, or ErrSearchRateLimited.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se SiftError
	if As(err, &se) && se.IsRetryable() {
		return true
	}
	return Is(err, ErrTimeout) || Is(err, ErrLLMRateLimited) || Is(err, ErrSearchRateLimited)
}

// IsUserFacing returns true if the error message is safe to display.
// Input sentinels are always user-facing.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var se SiftError
	if As(err, &se) {
		return se.IsUserFacing()
	}
	return Is(err, ErrEmptyQuery) || Is(err, ErrEmptyMotion) || Is(err, ErrInvalidSearchCount)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement SiftError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var se SiftError
	if As(err, &se) {
		return se.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
