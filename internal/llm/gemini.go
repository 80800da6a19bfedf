package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Iron-Ham/sift/internal/errors"
)

// Gemini calls Google's Gemini API through the generative-ai-go SDK.
type Gemini struct {
	client *genai.Client
	model  string
	opts   options
	owner  bool
}

// NewGemini creates a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: %w", errors.ErrMissingAPIKey)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, opts: o, owner: true}, nil
}

// Model returns the Gemini model name.
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) WithModel(model string) Provider {
	return &Gemini{client: g.client, model: model, opts: g.opts}
}

// Close releases the underlying client. Providers derived through WithModel
// share the client and do not close it.
func (g *Gemini) Close() error {
	if !g.owner {
		return nil
	}
	return g.client.Close()
}

// Generate runs one GenerateContent call with the system prompt installed
// as the model's system instruction.
func (g *Gemini) Generate(ctx context.Context, system, user string) (Response, error) {
	model := g.client.GenerativeModel(g.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if g.opts.jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	if g.opts.temperature != nil {
		model.SetTemperature(float32(*g.opts.temperature))
	}

	var resp *genai.GenerateContentResponse
	err := withBackoff(ctx, g.opts, func() error {
		r, err := model.GenerateContent(ctx, genai.Text(user))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return g.llmError("generate content failed", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return Response{}, err
	}

	text := geminiText(resp)
	if strings.TrimSpace(text) == "" {
		return Response{}, errors.NewLLMError("no text in candidates", errors.ErrEmptyCompletion).
			WithProvider(ProviderGemini).WithModel(g.model)
	}

	out := Response{Text: text, Model: g.model}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func (g *Gemini) llmError(msg string, err error) error {
	return googleLLMError(msg, err).WithProvider(ProviderGemini).WithModel(g.model)
}
