package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/tidwall/gjson"
)

// OpenAI calls any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	endpoint string
	apiKey   string
	model    string
	opts     options
}

var versionSegment = regexp.MustCompile(`/v\d+[a-z0-9]*(/|$)`)

// chatCompletionsURL appends /v1 when baseURL carries no API version.
func chatCompletionsURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if !versionSegment.MatchString(base) {
		base += "/v1"
	}
	return base + "/chat/completions"
}

// NewOpenAI creates a client for the endpoint at baseURL.
func NewOpenAI(baseURL, apiKey, model string, opts ...Option) *OpenAI {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &OpenAI{
		endpoint: chatCompletionsURL(baseURL),
		apiKey:   apiKey,
		model:    model,
		opts:     o,
	}
}

// Model returns the model name sent with each request.
func (c *OpenAI) Model() string { return c.model }

func (c *OpenAI) WithModel(model string) Provider {
	clone := *c
	clone.model = model
	return &clone
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// Generate sends one chat completion request. Rate limits and server errors
// are retried with exponential backoff.
func (c *OpenAI) Generate(ctx context.Context, system, user string) (Response, error) {
	req := chatRequest{
		Model:       c.model,
		Temperature: c.opts.temperature,
	}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: user})
	if c.opts.jsonMode {
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	body, err := c.doWithRetries(ctx, payload)
	if err != nil {
		return Response{}, err
	}

	text := gjson.GetBytes(body, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return Response{}, c.llmError("no content in completion", errors.ErrEmptyCompletion, 0)
	}

	model := gjson.GetBytes(body, "model").String()
	if model == "" {
		model = c.model
	}
	return Response{
		Text:         text,
		Model:        model,
		InputTokens:  int(gjson.GetBytes(body, "usage.prompt_tokens").Int()),
		OutputTokens: int(gjson.GetBytes(body, "usage.completion_tokens").Int()),
	}, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *OpenAI) doWithRetries(ctx context.Context, payload []byte) ([]byte, error) {
	var body []byte
	err := withBackoff(ctx, c.opts, func() error {
		status, b, err := c.do(ctx, payload)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if terr := timeoutError("chat completion", c.opts, err); terr != nil {
				return terr
			}
			return c.llmError("request failed", fmt.Errorf("%w: %v", errors.ErrLLMRequest, err), 0)
		}
		if status != http.StatusOK {
			cause := errors.ErrLLMRequest
			if status == http.StatusTooManyRequests {
				cause = errors.ErrLLMRateLimited
			}
			return c.llmError(errorMessage(b), cause, status).WithRetryable(retryableStatus(status))
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *OpenAI) do(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// errorMessage prefers the API's error.message field over the raw body.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 500 {
		text = text[:500]
	}
	if text == "" {
		return "empty response body"
	}
	return text
}

func (c *OpenAI) llmError(msg string, cause error, status int) *errors.LLMError {
	return errors.NewLLMError(msg, cause).
		WithProvider(ProviderOpenAI).
		WithModel(c.model).
		WithStatus(status)
}
