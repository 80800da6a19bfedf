package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Iron-Ham/sift/internal/errors"
)

func TestAnthropic_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if key := r.Header.Get("X-Api-Key"); key != "sk-ant" {
			t.Errorf("x-api-key = %q", key)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"verdict: FOR"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":30,"output_tokens":5}}`)
	}))
	defer srv.Close()

	a, err := NewAnthropic("sk-ant", "claude-test", srv.URL, WithJSONMode(), WithMaxRetries(0))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := a.Generate(context.Background(), "You judge debates.", "motion")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "verdict: FOR" || resp.InputTokens != 30 || resp.OutputTokens != 5 {
		t.Errorf("unexpected response: %+v", resp)
	}

	system, _ := json.Marshal(body["system"])
	if !strings.Contains(string(system), jsonInstruction) {
		t.Errorf("system prompt should carry the JSON instruction, got %s", system)
	}
}

func TestAnthropic_Errors(t *testing.T) {
	if _, err := NewAnthropic(" ", "m", ""); !errors.Is(err, errors.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}))
	defer srv.Close()

	a, _ := NewAnthropic("k", "nope", srv.URL, WithMaxRetries(0))
	_, err := a.Generate(context.Background(), "", "hi")
	if !errors.Is(err, errors.ErrLLMRequest) {
		t.Fatalf("error = %v, want ErrLLMRequest", err)
	}
	var llmErr *errors.LLMError
	if !errors.As(err, &llmErr) || llmErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected LLMError with status 400, got %v", err)
	}
}
