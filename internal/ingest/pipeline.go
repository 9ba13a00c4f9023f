// Package ingest turns raw JSON batches into rows of the logs table.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/slogger-dev/slogger/internal/partition"
	"github.com/slogger-dev/slogger/internal/timeextract"
)

// ErrInvalidPayload is returned when the request body is not a JSON array.
var ErrInvalidPayload = errors.New("body must be a json array")

// Execer is the insert slice of pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Partitioner guarantees a day partition exists before rows land in it.
type Partitioner interface {
	EnsureForDate(ctx context.Context, t time.Time) error
}

// TimePaths supplies the ordered extraction paths, typically re-read from
// the config document per call.
type TimePaths func() []string

// Pipeline ingests batches for a source: normalize, derive event times,
// ensure partitions for every distinct day in the batch, then bulk-insert.
type Pipeline struct {
	db         Execer
	partitions Partitioner
	timePaths  TimePaths
	now        func() time.Time
}

// NewPipeline wires a Pipeline. timePaths may be nil, in which case the
// default extraction paths are used.
func NewPipeline(db Execer, partitions Partitioner, timePaths TimePaths) *Pipeline {
	if timePaths == nil {
		timePaths = func() []string { return timeextract.DefaultPaths }
	}
	return &Pipeline{db: db, partitions: partitions, timePaths: timePaths, now: time.Now}
}

type row struct {
	props json.RawMessage
	time  time.Time
}

// Ingest validates body as a JSON array, normalizes every element, and
// inserts the whole batch in one statement. The insert is all-or-nothing:
// on error no rows from this call are committed. Returns the number of rows
// inserted, equal to the array length on success.
func (p *Pipeline) Ingest(ctx context.Context, source string, body []byte) (int, error) {
	// A bare null also unmarshals into a slice, so check the shape first.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrInvalidPayload
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return 0, ErrInvalidPayload
	}
	if len(elements) == 0 {
		return 0, nil
	}

	paths := p.timePaths()
	rows := make([]row, 0, len(elements))
	for _, elem := range elements {
		props, obj := NormalizeProps(elem)
		t, ok := timeextract.Extract(obj, paths)
		if !ok {
			t = p.now()
		}
		rows = append(rows, row{props: props, time: t})
	}

	// One ensure per distinct UTC day, all before the insert starts.
	days := make(map[time.Time]struct{})
	for _, r := range rows {
		days[partition.DayStart(r.time)] = struct{}{}
	}
	for day := range days {
		if err := p.partitions.EnsureForDate(ctx, day); err != nil {
			return 0, err
		}
	}

	if err := p.insert(ctx, source, rows); err != nil {
		return 0, fmt.Errorf("insert batch for %s: %w", source, err)
	}
	return len(rows), nil
}

// insert writes all rows in a single statement so the batch commits
// atomically without an explicit transaction.
func (p *Pipeline) insert(ctx context.Context, source string, rows []row) error {
	sources := make([]string, len(rows))
	props := make([][]byte, len(rows))
	times := make([]time.Time, len(rows))
	for i, r := range rows {
		sources[i] = source
		props[i] = r.props
		times[i] = r.time
	}

	_, err := p.db.Exec(ctx, `
		INSERT INTO logs (source, props, "time")
		SELECT * FROM unnest($1::text[], $2::jsonb[], $3::timestamptz[])`,
		sources, props, times)
	return err
}
