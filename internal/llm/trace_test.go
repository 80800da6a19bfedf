package llm

import (
	"context"
	"testing"
)

func TestTracer_Disabled(t *testing.T) {
	tracer := NewTracer(context.Background(), false, nil)
	if tracer.Enabled() {
		t.Fatal("tracer should be disabled")
	}

	id := tracer.StartTrace("research", "query")
	if len(id) != 36 {
		t.Errorf("StartTrace() = %q, want a UUID", id)
	}
	if url := tracer.TraceURL(id); url != "" {
		t.Errorf("TraceURL() = %q, want empty when disabled", url)
	}
	tracer.Flush(context.Background())

	p := &stubProvider{model: "m"}
	if Traced(p, tracer) != Provider(p) {
		t.Error("Traced with a disabled tracer should return the provider unchanged")
	}
}

func TestTracer_EnabledWithoutCredentials(t *testing.T) {
	t.Setenv("LANGFUSE_PUBLIC_KEY", "")
	t.Setenv("LANGFUSE_SECRET_KEY", "")
	if NewTracer(context.Background(), true, nil).Enabled() {
		t.Error("tracer without credentials should stay disabled")
	}
}

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	if TraceIDFromContext(ctx) != "" {
		t.Error("empty context should carry no trace")
	}
	ctx = ContextWithTrace(ctx, "abc")
	if got := TraceIDFromContext(ctx); got != "abc" {
		t.Errorf("TraceIDFromContext() = %q, want abc", got)
	}

	if callName(ctx) != "generate" {
		t.Errorf("default call name = %q", callName(ctx))
	}
	if got := callName(WithCallName(ctx, "planner")); got != "planner" {
		t.Errorf("callName() = %q, want planner", got)
	}
}
