package research

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sift/internal/errors"
)

const maxSlugLength = 60

// Report is a finished research report.
type Report struct {
	ID           string
	Query        string
	TraceID      string
	Markdown     string
	ShortSummary string
	FollowUps    []string
	Searches     int
	CreatedAt    time.Time
}

// Render returns the report as displayed to the user.
func (r *Report) Render() string {
	return fmt.Sprintf("# Final report for: %s\n\n%s", r.Query, r.Markdown)
}

type frontMatter struct {
	Query             string   `yaml:"query"`
	TraceID           string   `yaml:"trace_id,omitempty"`
	Searches          int      `yaml:"searches"`
	CreatedAt         string   `yaml:"created_at"`
	Summary           string   `yaml:"summary,omitempty"`
	FollowUpQuestions []string `yaml:"follow_up_questions,omitempty"`
}

// Export writes the report to dir as {slug}-{yyyymmdd-hhmmss}.md with YAML
// front-matter and returns the path. An existing file is never overwritten.
func (r *Report) Export(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", errors.Join(errors.ErrExportFailed, err))
	}

	fm, err := yaml.Marshal(frontMatter{
		Query:             r.Query,
		TraceID:           r.TraceID,
		Searches:          r.Searches,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		Summary:           r.ShortSummary,
		FollowUpQuestions: r.FollowUps,
	})
	if err != nil {
		return "", fmt.Errorf("encode front-matter: %w", errors.Join(errors.ErrExportFailed, err))
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(r.Render())
	buf.WriteString("\n")

	base := fmt.Sprintf("%s-%s", Slugify(r.Query), r.CreatedAt.Format("20060102-150405"))
	path := filepath.Join(dir, base+".md")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) && r.ID != "" {
		path = filepath.Join(dir, fmt.Sprintf("%s-%.8s.md", base, r.ID))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create report file: %w", errors.Join(errors.ErrExportFailed, err))
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("write report file: %w", errors.Join(errors.ErrExportFailed, err))
	}
	return path, nil
}

// Slugify turns a query into a file name stem: accents folded, lowercase,
// runs of anything else replaced by a single "-", at most 60 characters.
func Slugify(query string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), query)
	if err != nil {
		folded = query
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "report"
	}
	return slug
}
