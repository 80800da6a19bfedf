package mailbox

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// FormatForPrompt renders messages as a tagged block for a model prompt.
// Messages are grouped by type in first-seen order. Returns "" for no messages.
func FormatForPrompt(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}

	groups := make(map[MessageType][]Message)
	var order []MessageType
	for _, msg := range messages {
		if _, seen := groups[msg.Type]; !seen {
			order = append(order, msg.Type)
		}
		groups[msg.Type] = append(groups[msg.Type], msg)
	}

	var b strings.Builder
	b.WriteString("<debate-record>\n")
	for i, mt := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", strings.ToUpper(string(mt)))
		for _, msg := range groups[mt] {
			fmt.Fprintf(&b, "From: %s\n", msg.From)
			if len(msg.Metadata) > 0 {
				fmt.Fprintf(&b, "Metadata: %s\n", formatMetadata(msg.Metadata))
			}
			b.WriteString(strings.TrimSpace(msg.Body))
			b.WriteString("\n")
		}
	}
	b.WriteString("</debate-record>")
	return b.String()
}

// FilterOptions controls which messages FormatFiltered includes.
type FilterOptions struct {
	Types       []MessageType // empty means all
	Since       time.Time     // zero means all
	From        string        // empty means all
	MaxMessages int           // 0 means unlimited; keeps the most recent
}

// FormatFiltered filters messages then renders them with FormatForPrompt.
func FormatFiltered(messages []Message, opts FilterOptions) string {
	return FormatForPrompt(filterMessages(messages, opts))
}

func filterMessages(messages []Message, opts FilterOptions) []Message {
	var result []Message
	for _, msg := range messages {
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, msg.Type) {
			continue
		}
		if !opts.Since.IsZero() && !msg.Timestamp.After(opts.Since) {
			continue
		}
		if opts.From != "" && msg.From != opts.From {
			continue
		}
		result = append(result, msg)
	}

	if opts.MaxMessages > 0 && len(result) > opts.MaxMessages {
		result = result[len(result)-opts.MaxMessages:]
	}
	return result
}

// formatMetadata renders m as "k=v, k=v" with sorted keys.
func formatMetadata(m map[string]any) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
