package llm

import (
	"context"
	"fmt"
	"strings"

	vertex "cloud.google.com/go/vertexai/genai"

	"github.com/Iron-Ham/sift/internal/errors"
)

// Vertex calls Gemini models hosted on Vertex AI. Credentials come from
// Application Default Credentials.
type Vertex struct {
	client *vertex.Client
	model  string
	opts   options
	owner  bool
}

// NewVertex creates a Vertex AI client for project and location.
func NewVertex(ctx context.Context, project, location, model string, opts ...Option) (*Vertex, error) {
	if strings.TrimSpace(project) == "" {
		return nil, fmt.Errorf("vertex: %w: project is required", errors.ErrInvalidConfig)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client, err := vertex.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return &Vertex{client: client, model: model, opts: o, owner: true}, nil
}

// Model returns the Vertex model name.
func (v *Vertex) Model() string { return v.model }

func (v *Vertex) WithModel(model string) Provider {
	return &Vertex{client: v.client, model: model, opts: v.opts}
}

// Close releases the underlying client unless it is shared.
func (v *Vertex) Close() error {
	if !v.owner {
		return nil
	}
	return v.client.Close()
}

// Generate runs one GenerateContent call against Vertex AI.
func (v *Vertex) Generate(ctx context.Context, system, user string) (Response, error) {
	model := v.client.GenerativeModel(v.model)
	if system != "" {
		model.SystemInstruction = &vertex.Content{Parts: []vertex.Part{vertex.Text(system)}}
	}
	if v.opts.jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	if v.opts.temperature != nil {
		model.SetTemperature(float32(*v.opts.temperature))
	}

	var resp *vertex.GenerateContentResponse
	err := withBackoff(ctx, v.opts, func() error {
		r, err := model.GenerateContent(ctx, vertex.Text(user))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return v.llmError("generate content failed", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return Response{}, err
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(vertex.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return Response{}, errors.NewLLMError("no text in candidates", errors.ErrEmptyCompletion).
			WithProvider(ProviderVertex).WithModel(v.model)
	}

	out := Response{Text: b.String(), Model: v.model}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (v *Vertex) llmError(msg string, err error) error {
	return googleLLMError(msg, err).WithProvider(ProviderVertex).WithModel(v.model)
}
