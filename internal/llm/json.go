package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Iron-Ham/sift/internal/errors"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkBlocks removes <think>...</think> reasoning blocks emitted by
// some open models and trims the result.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

// DecodeJSON extracts the first JSON object from model output and decodes
// it into v. Code fences, reasoning blocks and surrounding prose are ignored.
func DecodeJSON(text string, v any) error {
	obj, ok := extractObject(StripThinkBlocks(text))
	if !ok {
		return fmt.Errorf("%w: no JSON object in output", errors.ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedOutput, err)
	}
	return nil
}

// extractObject returns the first balanced {...} span, honoring strings
// and escapes so braces inside values do not end the object early.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
