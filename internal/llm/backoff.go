package llm

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/Iron-Ham/sift/internal/errors"
)

// withBackoff calls fn until it succeeds, returns an error that
// errors.IsRetryable rejects, or the retry budget is spent. Delays start at
// opts.baseDelay and double.
func withBackoff(ctx context.Context, opts options, fn func() error) error {
	delay := opts.baseDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.IsRetryable(err) || attempt >= opts.maxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// timeoutError reports a call that ran past the HTTP client deadline, or nil
// when err is not a timeout.
func timeoutError(operation string, opts options, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return errors.NewTimeoutError(operation, opts.httpClient.Timeout).WithCause(err)
	}
	return nil
}

// googleStatus extracts an HTTP status from Google API errors, or 0.
func googleStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "Error 429"):
		return http.StatusTooManyRequests
	case strings.Contains(msg, "UNAVAILABLE"), strings.Contains(msg, "Error 503"):
		return http.StatusServiceUnavailable
	}
	return 0
}

// googleLLMError classifies a Google SDK failure. Rate limits and server
// errors are retryable.
func googleLLMError(msg string, err error) *errors.LLMError {
	status := googleStatus(err)
	sentinel := errors.ErrLLMRequest
	if status == http.StatusTooManyRequests {
		sentinel = errors.ErrLLMRateLimited
	}
	return errors.NewLLMError(msg, fmt.Errorf("%w: %v", sentinel, err)).
		WithStatus(status).
		WithRetryable(status == http.StatusTooManyRequests || status >= 500)
}

// Close releases the backend connection held by p, if any.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
