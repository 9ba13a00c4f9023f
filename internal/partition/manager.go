// Package partition keeps the logs table partitioned by UTC calendar day.
// Every row's event time must land in an existing day partition, so ingest
// calls EnsureForDate just in time and a background Maintainer pre-creates
// a rolling window of future days.
package partition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the slice of pgxpool.Pool the manager needs. Kept narrow so
// tests can substitute a fake.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Manager creates and lists day partitions of the logs table.
type Manager struct {
	db Execer
}

// NewManager returns a Manager backed by db.
func NewManager(db Execer) *Manager {
	return &Manager{db: db}
}

// Name returns the deterministic partition name for the UTC day containing t,
// e.g. logs_2025_01_31.
func Name(t time.Time) string {
	return "logs_" + t.UTC().Format("2006_01_02")
}

// DayStart returns midnight UTC of the day containing t.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EnsureForDate creates the partition covering the UTC day of t if it does
// not already exist. Concurrent callers for the same day are fine: the
// statement is IF NOT EXISTS, and the duplicate errors Postgres can still
// raise under a create race (42P07, 23505) are absorbed as success.
//
// The interval bounds are rendered into the DDL text because CREATE TABLE
// does not take bind parameters; they come from computed day boundaries,
// never from caller input.
func (m *Manager) EnsureForDate(ctx context.Context, t time.Time) error {
	from := DayStart(t)
	to := from.AddDate(0, 0, 1)

	sql := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s PARTITION OF logs FOR VALUES FROM ('%s') TO ('%s')`,
		Name(from),
		from.Format(time.RFC3339),
		to.Format(time.RFC3339),
	)

	if _, err := m.db.Exec(ctx, sql); err != nil {
		if isDuplicate(err) {
			return nil
		}
		return fmt.Errorf("ensure partition %s: %w", Name(from), err)
	}
	return nil
}

// EnsureAhead creates partitions for today through today+daysAhead
// inclusive. Later days are independent of earlier ones, so the sweep
// continues past failures and reports them joined.
func (m *Manager) EnsureAhead(ctx context.Context, daysAhead int) error {
	today := DayStart(time.Now())
	var errs []error
	for i := 0; i <= daysAhead; i++ {
		if err := m.EnsureForDate(ctx, today.AddDate(0, 0, i)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the names of all existing partitions of logs, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	rows, err := m.db.Query(ctx, `
		SELECT child.relname
		FROM pg_inherits
		JOIN pg_class parent ON parent.oid = pg_inherits.inhparent
		JOIN pg_class child ON child.oid = pg_inherits.inhrelid
		WHERE parent.relname = 'logs'
		ORDER BY child.relname`)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// isDuplicate reports whether err is a duplicate-object error from a
// partition create race: 42P07 duplicate_table, or 23505 from the pg_type
// unique index when two backends create the same table simultaneously.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42P07" || pgErr.Code == "23505"
}
