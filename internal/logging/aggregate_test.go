package logging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"time":"2026-03-01T10:00:02Z","level":"INFO","msg":"plan ready","session_id":"s1","phase":"plan","searches":3}
not json
{"time":"2026-03-01T10:00:01Z","level":"DEBUG","msg":"clarify skipped","session_id":"s1","phase":"clarify"}
{"time":"2026-03-01T10:00:03Z","level":"WARN","msg":"Search failed","session_id":"s1","phase":"search","component":"searcher"}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LogFileName), []byte(sampleLog), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestAggregateLogs(t *testing.T) {
	dir := writeSample(t)
	backup := `{"time":"2026-03-01T09:59:59Z","level":"INFO","msg":"started","session_id":"s0"}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, LogFileName+".1"), []byte(backup), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := AggregateLogs(dir)
	if err != nil {
		t.Fatalf("AggregateLogs failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4 (malformed line skipped)", len(entries))
	}

	wantOrder := []string{"started", "clarify skipped", "plan ready", "Search failed"}
	for i, msg := range wantOrder {
		if entries[i].Message != msg {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, msg)
		}
	}
	if entries[2].Attrs["searches"] != float64(3) {
		t.Errorf("attrs[searches] = %v, want 3", entries[2].Attrs["searches"])
	}
	if entries[3].Component != "searcher" {
		t.Errorf("Component = %q, want searcher", entries[3].Component)
	}
}

func TestAggregateLogs_MissingFile(t *testing.T) {
	if _, err := AggregateLogs(t.TempDir()); err == nil {
		t.Error("expected an error for a directory without logs")
	}
}

func TestFilterLogs(t *testing.T) {
	entries, err := AggregateLogs(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter LogFilter
		want   int
	}{
		{"empty filter keeps all", LogFilter{}, 3},
		{"level info and above", LogFilter{Level: "info"}, 2},
		{"phase", LogFilter{Phase: "clarify"}, 1},
		{"message case-insensitive", LogFilter{MessageContains: "search"}, 1},
		{"since", LogFilter{Since: time.Date(2026, 3, 1, 10, 0, 2, 0, time.UTC)}, 2},
		{"until", LogFilter{Until: time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC)}, 1},
		{"session mismatch", LogFilter{SessionID: "other"}, 0},
		{"component", LogFilter{Component: "searcher"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(FilterLogs(entries, tt.filter)); got != tt.want {
				t.Errorf("FilterLogs() returned %d entries, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteLogEntries(t *testing.T) {
	entries, err := AggregateLogs(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLogEntries(&buf, entries, "text"); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "DEBUG - clarify skipped (session=s1, phase=clarify)") {
			t.Errorf("text output missing formatted entry:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLogEntries(&buf, entries, "json"); err != nil {
			t.Fatal(err)
		}
		var decoded []LogEntry
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON export: %v", err)
		}
		if len(decoded) != len(entries) {
			t.Errorf("decoded %d entries, want %d", len(decoded), len(entries))
		}
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		if err := ExportLogEntries(entries, path, "csv"); err != nil {
			t.Fatal(err)
		}
		f, _ := os.Open(path)
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != len(entries)+1 {
			t.Errorf("got %d records, want %d", len(records), len(entries)+1)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if err := WriteLogEntries(&bytes.Buffer{}, entries, "xml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}
