package debate

import (
	"reflect"
	"testing"
)

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "   ", 2, nil},
		{"single sentence", "Cats purr.", 2, []string{"Cats purr."}},
		{"pairs", "One. Two! Three? Four.", 2, []string{"One. Two!", "Three? Four."}},
		{"remainder", "One. Two. Three.", 2, []string{"One. Two.", "Three."}},
		{"newlines split", "One.\n\nTwo.", 1, []string{"One.", "Two."}},
		{"no space after period", "Version 1.5 is out. Yes.", 1, []string{"Version 1.5 is out.", "Yes."}},
		{"zero treated as one", "A. B.", 0, []string{"A.", "B."}},
		{"no terminal punctuation", "no punctuation here", 3, []string{"no punctuation here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitIntoChunks(tt.text, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitIntoChunks(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestSimulateConversation(t *testing.T) {
	lines := SimulateConversation("F1. F2. F3. F4. F5.", "A1. A2.", 2)
	want := []ConversationLine{
		{SpeakerFor, "F1. F2."},
		{SpeakerAgainst, "A1. A2."},
		{SpeakerFor, "F3. F4."},
		{SpeakerFor, "F5."},
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("SimulateConversation() = %+v, want %+v", lines, want)
	}
}

func TestSimulateConversation_EmptySide(t *testing.T) {
	lines := SimulateConversation("", "Only against.", 2)
	if len(lines) != 1 || lines[0].Speaker != SpeakerAgainst {
		t.Errorf("SimulateConversation() = %+v", lines)
	}
}

func TestFormatConversation(t *testing.T) {
	got := FormatConversation([]ConversationLine{{SpeakerFor, "Yes."}, {SpeakerAgainst, "No."}})
	want := "**Debater FOR**: Yes.\n\n**Debater AGAINST**: No."
	if got != want {
		t.Errorf("FormatConversation() = %q, want %q", got, want)
	}
}

func TestCleanOutput(t *testing.T) {
	in := "\x1b[1;32m╭──── Agent Started ────╮\x1b[0m\n" +
		"│   Working on it   │\n" +
		"-----\n\n\n\n" +
		"    \x1b[31mDone\x1b[0m\n"
	got := CleanOutput(in)
	want := "Agent Started \nWorking on it   \n\nDone"
	if got != want {
		t.Errorf("CleanOutput() = %q, want %q", got, want)
	}
}
