package query

import (
	"strconv"
	"strings"
	"time"
)

// DefaultLimit and MaxLimit bound page sizes for the service API. The engine
// always enforces a ceiling so a single query cannot return an unbounded
// result set.
const (
	DefaultLimit = 1000
	MaxLimit     = 1000
)

// ParseLimit parses a limit query parameter. Unparsable, zero, or negative
// values fall back to def; everything is clamped to max.
func ParseLimit(value string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseOffset parses an offset query parameter; unparsable or negative
// values become 0.
func ParseOffset(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseTime parses a from/to bound permissively: anything that does not
// parse as a timestamp is treated as an absent bound, never an error.
func ParseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func clampOffset(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
