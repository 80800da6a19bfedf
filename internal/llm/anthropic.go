package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Iron-Ham/sift/internal/errors"
)

const jsonInstruction = "Respond with a single JSON object and nothing else."

// Anthropic calls the Anthropic Messages API through the official SDK.
// Retries are delegated to the SDK.
type Anthropic struct {
	client anthropic.Client
	model  string
	opts   options
}

// NewAnthropic creates an Anthropic client. An empty baseURL uses the
// public API endpoint.
func NewAnthropic(apiKey, model, baseURL string, opts ...Option) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("anthropic: %w", errors.ErrMissingAPIKey)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(o.maxRetries),
		anthropicoption.WithHTTPClient(o.httpClient),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, anthropicoption.WithBaseURL(baseURL))
	}
	return &Anthropic{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
		opts:   o,
	}, nil
}

// Model returns the Claude model name.
func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) WithModel(model string) Provider {
	clone := *a
	clone.model = model
	return &clone
}

// Generate sends one Messages request. JSON mode is requested through the
// system prompt because the API has no response format switch.
func (a *Anthropic) Generate(ctx context.Context, system, user string) (Response, error) {
	if a.opts.jsonMode {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.opts.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if a.opts.temperature != nil {
		params.Temperature = anthropic.Float(*a.opts.temperature)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, a.llmError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return Response{}, errors.NewLLMError("no text blocks in message", errors.ErrEmptyCompletion).
			WithProvider(ProviderAnthropic).WithModel(a.model)
	}

	model := string(msg.Model)
	if model == "" {
		model = a.model
	}
	return Response{
		Text:         b.String(),
		Model:        model,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (a *Anthropic) llmError(err error) error {
	if terr := timeoutError("messages request", a.opts, err); terr != nil {
		return terr
	}
	status := 0
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	cause := fmt.Errorf("%w: %v", errors.ErrLLMRequest, err)
	if status == 429 {
		cause = fmt.Errorf("%w: %v", errors.ErrLLMRateLimited, err)
	}
	return errors.NewLLMError("messages request failed", cause).
		WithProvider(ProviderAnthropic).
		WithModel(a.model).
		WithStatus(status)
}
