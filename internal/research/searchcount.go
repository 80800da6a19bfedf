package research

import (
	"strconv"
	"strings"

	"github.com/Iron-Ham/sift/internal/errors"
)

// Bounds on the number of web searches per session.
const (
	MinSearches     = 1
	MaxSearches     = 5
	DefaultSearches = 3
)

// ParseSearchCount normalizes user input into [MinSearches, MaxSearches].
// Blank or non-integer input yields DefaultSearches. Integers too large for
// an int clamp by sign like any other out-of-range count.
func ParseSearchCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSearches
	}
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(raw, "-"):
		return MinSearches
	case errors.Is(err, strconv.ErrRange):
		return MaxSearches
	case err != nil:
		return DefaultSearches
	}
	return ClampSearchCount(n)
}

// ClampSearchCount bounds n to [MinSearches, MaxSearches].
func ClampSearchCount(n int) int {
	return min(max(n, MinSearches), MaxSearches)
}
