package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	maxInputRunes    = 200
	maxResponseRunes = 300
)

// CallEntry is one recorded model call.
type CallEntry struct {
	Timestamp string // HH:MM:SS
	Provider  string
	Model     string
	Input     string
	Response  string
	Err       string
}

// CallLog is a thread-safe record of model calls, rendered as Markdown for
// the debate "show calls" view.
type CallLog struct {
	mu      sync.Mutex
	entries []CallEntry
	now     func() time.Time
}

// NewCallLog creates an empty CallLog.
func NewCallLog() *CallLog {
	return &CallLog{now: time.Now}
}

// Record appends a call. Each message is truncated to 200 runes and the
// response to 300 runes.
func (l *CallLog) Record(model, system, user string, resp Response, err error) {
	var input strings.Builder
	if system != "" {
		fmt.Fprintf(&input, "**SYSTEM:** %s\n\n", truncate(system, maxInputRunes))
	}
	fmt.Fprintf(&input, "**USER:** %s", truncate(user, maxInputRunes))

	entry := CallEntry{
		Provider: ProviderFromModel(model),
		Model:    model,
		Input:    strings.TrimSpace(input.String()),
		Response: strings.TrimSpace(truncate(resp.Text, maxResponseRunes)),
	}
	if entry.Model == "" {
		entry.Model = "unknown"
	}
	if err != nil {
		entry.Err = err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Timestamp = l.now().Format("15:04:05")
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded calls.
func (l *CallLog) Entries() []CallEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]CallEntry(nil), l.entries...)
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all recorded calls.
func (l *CallLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Markdown renders the log with one "## 📞 API Call #i (ts)" section per call.
func (l *CallLog) Markdown() string {
	entries := l.Entries()
	if len(entries) == 0 {
		return "No API calls logged yet..."
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "## 📞 API Call #%d (%s)\n\n", i+1, e.Timestamp)
		fmt.Fprintf(&b, "**Provider:** `%s`\n", e.Provider)
		fmt.Fprintf(&b, "**Model:** `%s`\n\n", e.Model)
		if e.Input != "" {
			fmt.Fprintf(&b, "**Input:**\n%s\n\n", e.Input)
		}
		if e.Response != "" {
			fmt.Fprintf(&b, "**Response:**\n%s\n\n", e.Response)
		}
		if e.Err != "" {
			fmt.Fprintf(&b, "**Error:** %s\n\n", e.Err)
		}
		b.WriteString("---\n\n")
	}
	return strings.TrimSpace(b.String())
}

// ProviderFromModel guesses the vendor from a model name.
func ProviderFromModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case m == "":
		return "unknown"
	case strings.Contains(m, "gpt"), strings.Contains(m, "openai"):
		return "OpenAI"
	case strings.Contains(m, "claude"), strings.Contains(m, "anthropic"):
		return "Anthropic"
	case strings.Contains(m, "gemini"), strings.Contains(m, "google"):
		return "Google"
	case strings.Contains(m, "llama"):
		return "Meta"
	}
	if prefix, _, ok := strings.Cut(model, "/"); ok {
		return prefix
	}
	return "Unknown"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type recorder struct {
	Provider
	log *CallLog
}

// Recorder returns a Provider that records every call made through p.
func Recorder(p Provider, log *CallLog) Provider {
	if log == nil {
		return p
	}
	return &recorder{Provider: p, log: log}
}

func (r *recorder) Generate(ctx context.Context, system, user string) (Response, error) {
	resp, err := r.Provider.Generate(ctx, system, user)
	r.log.Record(r.Provider.Model(), system, user, resp, err)
	return resp, err
}

func (r *recorder) WithModel(model string) Provider {
	return &recorder{Provider: WithModel(r.Provider, model), log: r.log}
}

func (r *recorder) Close() error { return Close(r.Provider) }
