package research

import (
	"strings"
	"sync"
)

// ProgressHeader opens every progress log.
const ProgressHeader = "# Deep Research Progress"

// ProgressLog accumulates status lines for display next to the report.
type ProgressLog struct {
	mu    sync.Mutex
	lines []string
}

// NewProgressLog creates a log containing only the header.
func NewProgressLog() *ProgressLog {
	return &ProgressLog{lines: []string{ProgressHeader}}
}

// Add appends a line.
func (p *ProgressLog) Add(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
}

// Apply records u if it belongs in the log. Reports are not logged.
func (p *ProgressLog) Apply(u Update) {
	if u.Kind == UpdateReport {
		return
	}
	p.Add(u.Text)
}

// Reset clears the log back to the header, for a new query.
func (p *ProgressLog) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = []string{ProgressHeader}
}

// String returns the log as Markdown.
func (p *ProgressLog) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.lines, "\n")
}
