package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one ingested event as stored in the logs table.
// Props is always a JSON object after normalization: object payloads are
// stored as-is, anything else is wrapped as {"value": <raw>} at ingest.
type LogEntry struct {
	ID        uuid.UUID       `json:"id"`
	Source    string          `json:"source"`
	Props     json.RawMessage `json:"props"`
	Time      time.Time       `json:"time"`
	CreatedAt time.Time       `json:"created_at"`
}
