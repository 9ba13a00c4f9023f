// Package timeextract derives an event time from an arbitrary JSON object
// by probing an ordered list of dotted field paths.
package timeextract

import (
	"math"
	"strings"
	"time"
)

// DefaultPaths is the fallback path list when the config document does not
// set time_paths.
var DefaultPaths = []string{"timestamp", "time", "created_at", "meta.time"}

// layouts tried in order for string values.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Extract resolves each path in order against entry and returns the first
// value that parses as a timestamp. Paths that miss, resolve through a
// non-object, or resolve to an unparseable value fall through to the next
// path. Returns false if every path misses; callers substitute ingestion
// time.
func Extract(entry map[string]any, paths []string) (time.Time, bool) {
	for _, path := range paths {
		value, ok := valueAtPath(entry, path)
		if !ok {
			continue
		}
		if t, ok := toTime(value); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// valueAtPath splits path on "." and descends through nested objects.
func valueAtPath(entry map[string]any, path string) (any, bool) {
	var current any = entry
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// maxEpochMilli bounds the representable date range, ±100,000,000 days
// around the epoch. Numbers beyond it are not valid timestamps and must
// miss, not produce a garbage time.
const maxEpochMilli = 8.64e15

// toTime accepts strings parsing as a date and JSON numbers, which are taken
// as Unix milliseconds.
func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	case float64:
		if math.Abs(v) > maxEpochMilli {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Time{}, false
}
