// Package query serves filtered, paginated reads of the logs table. Every
// optional filter clause binds its value as a positional parameter; user
// input is never interpolated into SQL text.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/slogger-dev/slogger/internal/model"
)

// Querier is the read slice of pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Filter describes one logs query. All fields are optional and compose with
// AND semantics. From/To are inclusive bounds on event time; nil means
// unbounded on that side.
type Filter struct {
	Sources  []string
	Search   string
	JSONPath string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Engine builds and runs logs queries.
type Engine struct {
	db Querier
}

// NewEngine returns an Engine backed by db.
func NewEngine(db Querier) *Engine {
	return &Engine{db: db}
}

// whereBuilder accumulates predicate fragments and their bound parameters.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends a predicate whose $N placeholder is the next parameter index.
func (b *whereBuilder) add(fragment string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(fragment, len(b.args)))
}

func (b *whereBuilder) clause() string {
	if len(b.clauses) == 0 {
		return "1=1"
	}
	return strings.Join(b.clauses, " AND ")
}

func buildWhere(f Filter) *whereBuilder {
	b := &whereBuilder{}

	sources := cleanSources(f.Sources)
	if len(sources) > 0 {
		b.add(`source = ANY($%d::text[])`, sources)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		b.add(`to_tsvector('simple', props) @@ plainto_tsquery('simple', $%d)`, search)
	}
	if path := strings.TrimSpace(f.JSONPath); path != "" {
		b.add(`props @? $%d::jsonpath`, path)
	}
	if f.From != nil {
		b.add(`"time" >= $%d`, *f.From)
	}
	if f.To != nil {
		b.add(`"time" <= $%d`, *f.To)
	}
	return b
}

// cleanSources trims entries and drops empties; a resulting empty set means
// no source restriction.
func cleanSources(sources []string) []string {
	cleaned := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// Logs returns one page of matching entries, most recent first, together
// with the exact total under the same predicate. The total is independent
// of limit and offset, so callers can do exact pagination math.
func (e *Engine) Logs(ctx context.Context, f Filter) ([]model.LogEntry, int, error) {
	where := buildWhere(f)
	limit := clampLimit(f.Limit, DefaultLimit, MaxLimit)
	offset := clampOffset(f.Offset)

	dataSQL := fmt.Sprintf(`
		SELECT id, source, props, "time", created_at
		FROM logs
		WHERE %s
		ORDER BY "time" DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		where.clause(), len(where.args)+1, len(where.args)+2)

	rows, err := e.db.Query(ctx, dataSQL, append(where.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.LogEntry, 0, limit)
	for rows.Next() {
		var entry model.LogEntry
		if err := rows.Scan(&entry.ID, &entry.Source, &entry.Props, &entry.Time, &entry.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM logs WHERE %s`, where.clause())
	var total int
	if err := e.db.QueryRow(ctx, countSQL, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}

	return logs, total, nil
}

// Sources returns the distinct set of source values across all stored rows,
// sorted ascending.
func (e *Engine) Sources(ctx context.Context) ([]string, error) {
	rows, err := e.db.Query(ctx, `SELECT DISTINCT source FROM logs ORDER BY source ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}
