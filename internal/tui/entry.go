package tui

import (
	"github.com/Iron-Ham/sift/internal/pipeline"
	"github.com/Iron-Ham/sift/internal/research"
)

// EntryKind classifies a streamed Entry.
type EntryKind int

const (
	// EntryStatus is a one-line progress message.
	EntryStatus EntryKind = iota
	// EntryTrace links to the trace of the run.
	EntryTrace
	// EntrySection is a multi-line Markdown block such as questions or an argument.
	EntrySection
	// EntryResult is the final document of a run: a report or a verdict.
	EntryResult
)

// Entry is one piece of streamed progress.
type Entry struct {
	Kind EntryKind
	Text string
}

// FromResearch converts a research update.
func FromResearch(u research.Update) Entry {
	switch u.Kind {
	case research.UpdateTrace:
		return Entry{Kind: EntryTrace, Text: u.Text}
	case research.UpdateClarification:
		return Entry{Kind: EntrySection, Text: u.Text}
	case research.UpdateReport:
		return Entry{Kind: EntryResult, Text: u.Text}
	default:
		return Entry{Kind: EntryStatus, Text: u.Text}
	}
}

// FromDebate converts a debate pipeline update.
func FromDebate(u pipeline.Update) Entry {
	switch u.Kind {
	case pipeline.UpdateArgument:
		return Entry{Kind: EntrySection, Text: u.Text}
	case pipeline.UpdateVerdict:
		return Entry{Kind: EntryResult, Text: u.Text}
	default:
		return Entry{Kind: EntryStatus, Text: u.Text}
	}
}
