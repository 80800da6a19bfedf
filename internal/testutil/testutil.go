// Package testutil provides fakes for sift tests: a scripted language model
// and a canned search engine.
package testutil

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/search"
)

// Call records one Generate invocation.
type Call struct {
	Model  string
	System string
	User   string
}

// Responder produces the reply for a call.
type Responder func(call Call) (string, error)

// ScriptedProvider is an llm.Provider whose replies come from a Responder.
// It is safe for concurrent use.
type ScriptedProvider struct {
	model   string
	respond Responder

	mu    *sync.Mutex
	calls *[]Call
}

// NewScriptedProvider creates a provider for model that answers with respond.
func NewScriptedProvider(model string, respond Responder) *ScriptedProvider {
	return &ScriptedProvider{model: model, respond: respond, mu: &sync.Mutex{}, calls: &[]Call{}}
}

// Route answers each call with the reply of the first rule whose key is a
// substring of the system prompt. Unmatched calls get fallback.
func Route(rules map[string]string, fallback string) Responder {
	return func(call Call) (string, error) {
		for key, reply := range rules {
			if strings.Contains(call.System, key) {
				return reply, nil
			}
		}
		return fallback, nil
	}
}

// Generate records the call and returns the scripted reply.
func (p *ScriptedProvider) Generate(ctx context.Context, system, user string) (llm.Response, error) {
	call := Call{Model: p.model, System: system, User: user}
	p.mu.Lock()
	*p.calls = append(*p.calls, call)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	text, err := p.respond(call)
	if err != nil {
		return llm.Response{}, err
	}
	return llm.Response{Text: text, Model: p.model}, nil
}

// Model returns the configured model name.
func (p *ScriptedProvider) Model() string { return p.model }

// WithModel returns a provider for another model sharing the call record.
func (p *ScriptedProvider) WithModel(model string) llm.Provider {
	cp := *p
	cp.model = model
	return &cp
}

// Calls returns a copy of the recorded calls.
func (p *ScriptedProvider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), *p.calls...)
}

// CallsMatching returns the recorded calls whose system prompt contains key.
func (p *ScriptedProvider) CallsMatching(key string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if strings.Contains(c.System, key) {
			out = append(out, c)
		}
	}
	return out
}

// StaticSearch is a search.Provider returning canned results per query.
type StaticSearch struct {
	Results map[string][]search.Result
	Errors  map[string]error

	mu      sync.Mutex
	queries []string
}

// Search returns the canned results for query, or a single generic hit.
func (s *StaticSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.Errors[query]; ok {
		return nil, err
	}
	if r, ok := s.Results[query]; ok {
		return r, nil
	}
	return []search.Result{{Title: query, URL: "https://example.com/" + url.PathEscape(query), Snippet: "About " + query}}, nil
}

// Name returns "static".
func (s *StaticSearch) Name() string { return "static" }

// Queries returns the queries searched so far.
func (s *StaticSearch) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// ReadFile reads a file or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// WriteFile writes content under dir, creating parents, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
