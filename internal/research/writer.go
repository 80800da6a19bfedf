package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/llm"
)

const writerInstructions = `You are a senior researcher writing a cohesive report for a research query. You receive the original query and summaries of the research done by an assistant.

First outline the structure and flow of the report, then write it. The report must be in Markdown, detailed and long: aim for 5-10 pages of content and at least 1000 words. Cite sources by linking to them where the summaries name them.

Respond with a single JSON object and nothing else:
{"short_summary": "2-3 sentence summary of the findings", "markdown_report": "the full report", "follow_up_questions": ["suggested topic to research further"]}`

// ReportData is the writer's structured output.
type ReportData struct {
	ShortSummary      string   `json:"short_summary"`
	MarkdownReport    string   `json:"markdown_report"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// Writer synthesizes search summaries into a report.
type Writer struct {
	model llm.Provider
}

// NewWriter creates a Writer backed by model.
func NewWriter(model llm.Provider) *Writer {
	return &Writer{model: model}
}

// Write produces the report for query from summaries.
func (w *Writer) Write(ctx context.Context, query string, summaries []SearchSummary) (*ReportData, error) {
	input := fmt.Sprintf("Original query: %s\n Summarized search results: %s", query, formatSummaries(summaries))

	resp, err := w.model.Generate(llm.WithCallName(ctx, "writer"), writerInstructions, input)
	if err != nil {
		return nil, err
	}

	var data ReportData
	if err := llm.DecodeJSON(resp.Text, &data); err != nil {
		return nil, err
	}
	data.MarkdownReport = strings.TrimSpace(data.MarkdownReport)
	if data.MarkdownReport == "" {
		return nil, fmt.Errorf("writer returned no report: %w", errors.ErrEmptyCompletion)
	}
	return &data, nil
}
