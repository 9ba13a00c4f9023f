package ingest

import (
	"bytes"
	"encoding/json"
)

// NormalizeProps makes every payload element object-shaped. JSON objects
// pass through with their raw bytes intact; any other value (string,
// number, array, bool, null) is wrapped as {"value": <raw>}. The second
// return is the decoded form of the normalized object, used for time
// extraction.
func NormalizeProps(elem json.RawMessage) (json.RawMessage, map[string]any) {
	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			return trimmed, obj
		}
	}

	// Splice the raw bytes in so numeric precision survives the round trip.
	wrapped := make([]byte, 0, len(trimmed)+11)
	wrapped = append(wrapped, `{"value":`...)
	wrapped = append(wrapped, trimmed...)
	wrapped = append(wrapped, '}')

	var value any
	_ = json.Unmarshal(trimmed, &value)
	return wrapped, map[string]any{"value": value}
}
