package llm

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/Iron-Ham/sift/internal/errors"
)

type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o timeout" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return true }

func TestGoogleStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"api error", &googleapi.Error{Code: http.StatusTooManyRequests}, http.StatusTooManyRequests},
		{"wrapped api error", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), http.StatusServiceUnavailable},
		{"resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), http.StatusTooManyRequests},
		{"error 429 text", errors.New("googleapi: Error 429: quota exceeded"), http.StatusTooManyRequests},
		{"unavailable", errors.New("rpc error: code = Unavailable desc = UNAVAILABLE"), http.StatusServiceUnavailable},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := googleStatus(tt.err); got != tt.want {
				t.Errorf("googleStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGoogleLLMError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		retryable bool
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, errors.ErrLLMRateLimited, true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), errors.ErrLLMRateLimited, true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, errors.ErrLLMRequest, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, errors.ErrLLMRequest, false},
		{"unclassified", errors.New("boom"), errors.ErrLLMRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := googleLLMError("generate content failed", tt.err)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if errors.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", errors.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestWithBackoff(t *testing.T) {
	rateLimited := errors.NewLLMError("throttled", errors.ErrLLMRateLimited)
	rejected := errors.NewLLMError("bad request", errors.ErrLLMRequest)

	tests := []struct {
		name       string
		maxRetries int
		failures   int
		failWith   error
		wantCalls  int
		wantErr    error
	}{
		{"first call succeeds", 3, 0, nil, 1, nil},
		{"recovers within budget", 3, 2, rateLimited, 3, nil},
		{"budget spent", 2, 10, rateLimited, 3, errors.ErrLLMRateLimited},
		{"no retries allowed", 0, 10, rateLimited, 1, errors.ErrLLMRateLimited},
		{"non-retryable stops at once", 5, 10, rejected, 1, errors.ErrLLMRequest},
		{"timeouts are retried", 3, 1, errors.NewTimeoutError("call", time.Second), 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options{maxRetries: tt.maxRetries, baseDelay: time.Millisecond}
			calls := 0
			err := withBackoff(context.Background(), opts, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithBackoff_ContextCanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := options{maxRetries: 5, baseDelay: time.Hour}
	calls := 0
	err := withBackoff(ctx, opts, func() error {
		calls++
		cancel()
		return errors.NewLLMError("throttled", errors.ErrLLMRateLimited)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTimeoutError(t *testing.T) {
	opts := options{httpClient: &http.Client{Timeout: 3 * time.Second}}

	err := timeoutError("chat completion", opts, fmt.Errorf("post: %w", netTimeout{}))
	if !errors.Is(err, errors.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("timeouts should be retryable")
	}
	var terr *errors.TimeoutError
	if !errors.As(err, &terr) || terr.Duration != 3*time.Second {
		t.Errorf("expected TimeoutError with the client timeout, got %v", err)
	}

	if err := timeoutError("chat completion", opts, errors.New("connection refused")); err != nil {
		t.Errorf("non-timeout error mapped to %v", err)
	}
}
