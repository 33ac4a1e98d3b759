// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records every dispatch outcome in a SQLite database so a run
// can be audited after the fact. Rows are append-only and keyed by run id.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const table = "dispatch_log"

// Entry is one dispatch outcome.
type Entry struct {
	RunID     string
	Venue     string
	URL       string
	Recipient string
	Subject   string
	Mode      string
	Outcome   string
	Detail    string
	At        time.Time
}

// Ledger wraps the dispatch database.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path and bootstraps the schema.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, now: time.Now}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			venue TEXT NOT NULL,
			url TEXT,
			recipient TEXT,
			subject TEXT,
			mode TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_run ON ` + table + `(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_url ON ` + table + `(url)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends an entry. A zero At is stamped with the current time.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = l.now()
	}
	query, args, err := sq.Insert(table).
		Columns("run_id", "venue", "url", "recipient", "subject", "mode", "outcome", "detail", "at").
		Values(e.RunID, e.Venue, e.URL, e.Recipient, e.Subject, e.Mode, e.Outcome, e.Detail, e.At.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording dispatch outcome: %w", err)
	}
	return nil
}

// Entries returns the entries of a run in insertion order.
func (l *Ledger) Entries(ctx context.Context, runID string) ([]Entry, error) {
	query, args, err := sq.Select("run_id", "venue", "url", "recipient", "subject", "mode", "outcome", "detail", "at").
		From(table).
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.RunID, &e.Venue, &e.URL, &e.Recipient, &e.Subject, &e.Mode, &e.Outcome, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing ledger time %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts returns the number of entries per outcome for a run.
func (l *Ledger) Counts(ctx context.Context, runID string) (map[string]int, error) {
	query, args, err := sq.Select("outcome", "COUNT(*)").
		From(table).
		Where(sq.Eq{"run_id": runID}).
		GroupBy("outcome").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building count: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting ledger: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// PreviouslySent reports whether any earlier run transmitted to url.
func (l *Ledger) PreviouslySent(ctx context.Context, url string) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").
		From(table).
		Where(sq.Eq{"url": url, "outcome": "sent"}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building lookup: %w", err)
	}
	var n int
	if err := l.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("looking up %s: %w", url, err)
	}
	return n > 0, nil
}
