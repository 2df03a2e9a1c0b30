// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/report"
)

// ErrNoRun is returned when a run id is not recorded.
var ErrNoRun = errors.New("history: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at      INTEGER NOT NULL,
	old_path    TEXT    NOT NULL,
	new_path    TEXT    NOT NULL,
	category    TEXT    NOT NULL,
	added       INTEGER NOT NULL,
	deleted     INTEGER NOT NULL,
	modified    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS changes (
	run_id        INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq           INTEGER NOT NULL,
	global_id     TEXT    NOT NULL,
	change_type   TEXT    NOT NULL,
	old_reference TEXT    NOT NULL,
	new_reference TEXT    NOT NULL,
	user_name     TEXT    NOT NULL,
	changed_at    INTEGER,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_changes_global_id ON changes(global_id);
`

// Run summarizes one recorded comparison.
type Run struct {
	ID       int64     `json:"Id"`
	At       time.Time `json:"At"`
	Old      string    `json:"Old"`
	New      string    `json:"New"`
	Category string    `json:"Category"`
	Added    int       `json:"Added"`
	Deleted  int       `json:"Deleted"`
	Modified int       `json:"Modified"`
}

// Store is a run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// One writer; the CLI never needs more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure history database: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	log.Debugf("history database %s open", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run and every row of l in one transaction and returns the
// new run id. run.ID is ignored; the counts are taken from l.
func (s *Store) Record(ctx context.Context, run Run, l report.Log) (int64, error) {
	counts := l.Counts()
	if run.At.IsZero() {
		run.At = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (ran_at, old_path, new_path, category, added, deleted, modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.At.Unix(), run.Old, run.New, run.Category,
		counts[differ.Added.String()], counts[differ.Deleted.String()], counts[differ.Modified.String()])
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO changes (run_id, seq, global_id, change_type, old_reference, new_reference, user_name, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, row := range l.Rows {
		var at sql.NullInt64
		if !row.Timestamp.IsZero() {
			at = sql.NullInt64{Int64: row.Timestamp.Unix(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, row.GlobalID, row.ChangeType,
			row.OldReference, row.NewReference, row.User, at); err != nil {
			return 0, fmt.Errorf("failed to insert change %s: %w", row.GlobalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	log.Debugf("recorded run %d with %d changes", id, len(l.Rows))
	return id, nil
}

// Runs lists recorded runs, newest first. A positive limit caps the result.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, ran_at, old_path, new_path, category, added, deleted, modified
	          FROM runs ORDER BY ran_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var at int64
		if err := rows.Scan(&r.ID, &at, &r.Old, &r.New, &r.Category, &r.Added, &r.Deleted, &r.Modified); err != nil {
			return nil, err
		}
		r.At = time.Unix(at, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Changes returns the change log recorded for run id.
func (s *Store) Changes(ctx context.Context, id int64) (report.Log, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Log{}, fmt.Errorf("%w: %d", ErrNoRun, id)
	}
	if err != nil {
		return report.Log{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT global_id, change_type, old_reference, new_reference, user_name, changed_at
		 FROM changes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return report.Log{}, fmt.Errorf("failed to read changes: %w", err)
	}
	defer rows.Close()

	var l report.Log
	for rows.Next() {
		var r report.Row
		var at sql.NullInt64
		if err := rows.Scan(&r.GlobalID, &r.ChangeType, &r.OldReference, &r.NewReference, &r.User, &at); err != nil {
			return report.Log{}, err
		}
		if at.Valid {
			r.Timestamp = time.Unix(at.Int64, 0)
		}
		l.Rows = append(l.Rows, r)
	}
	return l, rows.Err()
}

// ModificationCounts counts change rows per GlobalId over every recorded
// run, the cumulative input to report.TopModified.
func (s *Store) ModificationCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT global_id, COUNT(*) FROM changes GROUP BY global_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count modifications: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
