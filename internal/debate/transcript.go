package debate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Speaker labels used in simulated conversations.
const (
	SpeakerFor     = "Debater FOR"
	SpeakerAgainst = "Debater AGAINST"
)

// ConversationLine is one utterance in a simulated conversation.
type ConversationLine struct {
	Speaker string
	Text    string
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// splitSentences splits text on whitespace that follows '.', '!' or '?'.
// The punctuation stays with its sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(sentences, text[start:])
}

// SplitIntoChunks groups the sentences of text into chunks of at most
// maxSentences sentences, joined by single spaces. maxSentences < 1 is
// treated as 1.
func SplitIntoChunks(text string, maxSentences int) []string {
	maxSentences = max(maxSentences, 1)

	var chunks []string
	var current []string
	for _, s := range splitSentences(text) {
		current = append(current, s)
		if len(current) >= maxSentences {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// SimulateConversation interleaves the two arguments as a back-and-forth,
// FOR speaking first. A side that runs out of chunks simply stops.
func SimulateConversation(forText, againstText string, maxSentences int) []ConversationLine {
	forChunks := SplitIntoChunks(forText, maxSentences)
	againstChunks := SplitIntoChunks(againstText, maxSentences)

	lines := make([]ConversationLine, 0, len(forChunks)+len(againstChunks))
	for i := range max(len(forChunks), len(againstChunks)) {
		if i < len(forChunks) {
			lines = append(lines, ConversationLine{Speaker: SpeakerFor, Text: forChunks[i]})
		}
		if i < len(againstChunks) {
			lines = append(lines, ConversationLine{Speaker: SpeakerAgainst, Text: againstChunks[i]})
		}
	}
	return lines
}

// FormatConversation renders lines as Markdown, one paragraph per line.
func FormatConversation(lines []ConversationLine) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "**%s**: %s\n\n", l.Speaker, l.Text)
	}
	return strings.TrimSpace(b.String())
}

var (
	boxDrawing   = regexp.MustCompile(`[╭╮╯╰─│]+`)
	dashLine     = regexp.MustCompile(`(?m)^-+\s*$`)
	blankRuns    = regexp.MustCompile(`\n\s*\n\s*\n+`)
	leadingSpace = regexp.MustCompile(`(?m)^[ \t]+`)
)

// CleanOutput makes captured terminal output readable as Markdown: ANSI
// sequences and box-drawing runs are removed, dash-only rules dropped,
// runs of blank lines collapsed and leading indentation trimmed.
func CleanOutput(text string) string {
	cleaned := ansi.Strip(text)
	cleaned = boxDrawing.ReplaceAllString(cleaned, "")
	cleaned = dashLine.ReplaceAllString(cleaned, "")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	cleaned = leadingSpace.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
