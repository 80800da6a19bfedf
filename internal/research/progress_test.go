package research

import "testing"

func TestProgressLog(t *testing.T) {
	p := NewProgressLog()
	if p.String() != ProgressHeader {
		t.Fatalf("new log = %q", p.String())
	}

	p.Apply(Update{Kind: UpdateTrace, Text: "trace"})
	p.Apply(Update{Kind: UpdateStatus, Text: "## Searching..."})
	p.Apply(Update{Kind: UpdateReport, Text: "# Final report for: q"})

	want := "# Deep Research Progress\ntrace\n## Searching..."
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	p.Reset()
	if p.String() != ProgressHeader {
		t.Errorf("after Reset() = %q", p.String())
	}
}
