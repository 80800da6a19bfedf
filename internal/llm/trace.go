package llm

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"

	"github.com/Iron-Ham/sift/internal/logging"
)

type traceKey struct{}
type callNameKey struct{}

// ContextWithTrace attaches a trace ID to ctx. Calls made through a Traced
// provider with this context are recorded under the trace.
func ContextWithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFromContext returns the trace ID attached to ctx, if any.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// WithCallName labels the model calls made with ctx, e.g. "planner".
func WithCallName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callNameKey{}, name)
}

func callName(ctx context.Context) string {
	if name, _ := ctx.Value(callNameKey{}).(string); name != "" {
		return name
	}
	return "generate"
}

// Tracer sends traces and generations to Langfuse. A disabled Tracer still
// issues trace IDs so callers do not branch on configuration.
type Tracer struct {
	client *langfuse.Langfuse
	host   string
	logger *logging.Logger
}

// NewTracer creates a Tracer. It is enabled only when enabled is true and
// LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY are set.
func NewTracer(ctx context.Context, enabled bool, logger *logging.Logger) *Tracer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	t := &Tracer{logger: logger.WithComponent("tracer")}
	if !enabled {
		return t
	}
	if os.Getenv("LANGFUSE_PUBLIC_KEY") == "" || os.Getenv("LANGFUSE_SECRET_KEY") == "" {
		t.logger.Warn("tracing enabled but Langfuse credentials are not set")
		return t
	}
	t.host = strings.TrimRight(os.Getenv("LANGFUSE_HOST"), "/")
	if t.host == "" {
		t.host = "https://cloud.langfuse.com"
	}
	t.client = langfuse.New(ctx)
	return t
}

// Enabled reports whether traces are exported.
func (t *Tracer) Enabled() bool {
	return t != nil && t.client != nil
}

// StartTrace creates a trace and returns its ID.
func (t *Tracer) StartTrace(name string, input any) string {
	id := uuid.NewString()
	if !t.Enabled() {
		return id
	}
	if _, err := t.client.Trace(&model.Trace{
		ID:    id,
		Name:  name,
		Input: input,
	}); err != nil {
		t.logger.Warn("failed to create trace", "trace_id", id, "error", err.Error())
	}
	return id
}

// TraceURL returns a link to the trace, or "" when tracing is disabled.
func (t *Tracer) TraceURL(traceID string) string {
	if !t.Enabled() || traceID == "" {
		return ""
	}
	return t.host + "/trace/" + traceID
}

// Flush sends buffered events.
func (t *Tracer) Flush(ctx context.Context) {
	if t.Enabled() {
		t.client.Flush(ctx)
	}
}

func (t *Tracer) recordGeneration(ctx context.Context, modelName, system, user string, start time.Time, resp Response, err error) {
	traceID := TraceIDFromContext(ctx)
	if !t.Enabled() || traceID == "" {
		return
	}
	end := time.Now()
	metadata := map[string]any{
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
	}
	if err != nil {
		metadata["error"] = err.Error()
	}

	gen, genErr := t.client.Generation(&model.Generation{
		TraceID:   traceID,
		Name:      callName(ctx),
		Model:     modelName,
		StartTime: &start,
		Input: []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		Metadata: metadata,
	}, nil)
	if genErr != nil {
		t.logger.Warn("failed to record generation", "trace_id", traceID, "error", genErr.Error())
		return
	}
	gen.Output = resp.Text
	gen.EndTime = &end
	if _, genErr := t.client.GenerationEnd(gen); genErr != nil {
		t.logger.Warn("failed to end generation", "trace_id", traceID, "error", genErr.Error())
	}
}

type traced struct {
	Provider
	tracer *Tracer
}

// Traced returns a Provider that records each call as a Langfuse
// generation under the trace attached to the call's context.
func Traced(p Provider, tracer *Tracer) Provider {
	if !tracer.Enabled() {
		return p
	}
	return &traced{Provider: p, tracer: tracer}
}

func (t *traced) Generate(ctx context.Context, system, user string) (Response, error) {
	start := time.Now()
	resp, err := t.Provider.Generate(ctx, system, user)
	t.tracer.recordGeneration(ctx, t.Provider.Model(), system, user, start, resp, err)
	return resp, err
}

func (t *traced) WithModel(model string) Provider {
	return &traced{Provider: WithModel(t.Provider, model), tracer: t.tracer}
}

func (t *traced) Close() error { return Close(t.Provider) }
