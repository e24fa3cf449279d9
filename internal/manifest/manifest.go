// Package manifest persists per-file processing outcomes to an embedded
// sqlite database so batch runs can be audited after the fact. The same
// entries are returned in memory as the run report.
package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_events (
	run_id      TEXT NOT NULL,
	country     TEXT NOT NULL,
	file        TEXT NOT NULL,
	year        INTEGER NOT NULL,
	stage       TEXT NOT NULL,
	error_code  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	warnings    INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, file)
);
CREATE INDEX IF NOT EXISTS idx_file_events_country ON file_events (country, run_id);
`

// Entry is one file's final state within a run.
type Entry struct {
	RunID      string    `db:"run_id"`
	Country    string    `db:"country"`
	File       string    `db:"file"`
	Year       int       `db:"year"`
	Stage      string    `db:"stage"`
	ErrorCode  string    `db:"error_code"`
	Error      string    `db:"error"`
	Warnings   int       `db:"warnings"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Failed reports whether the file ended in a failure stage.
func (e Entry) Failed() bool { return e.Stage == "failed" }

// Store is the sqlite-backed manifest store.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the manifest database.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create manifest schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record upserts a file's state. Re-processing a file within the same run
// overwrites the previous entry (last write wins).
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	query := `INSERT INTO file_events
		(run_id, country, file, year, stage, error_code, error, warnings, recorded_at)
	VALUES
		(:run_id, :country, :file, :year, :stage, :error_code, :error, :warnings, :recorded_at)
	ON CONFLICT (run_id, file) DO UPDATE SET
		stage = excluded.stage,
		error_code = excluded.error_code,
		error = excluded.error,
		warnings = excluded.warnings,
		recorded_at = excluded.recorded_at`

	if _, err := s.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("failed to record manifest entry for %s: %w", e.File, err)
	}
	return nil
}

// RunEntries returns every entry of one run ordered by country then file.
func (s *Store) RunEntries(ctx context.Context, runID string) ([]Entry, error) {
	var entries []Entry
	query := `SELECT run_id, country, file, year, stage, error_code, error, warnings, recorded_at
		FROM file_events WHERE run_id = ? ORDER BY country, file`
	if err := s.db.SelectContext(ctx, &entries, query, runID); err != nil {
		return nil, fmt.Errorf("failed to load manifest for run %s: %w", runID, err)
	}
	return entries, nil
}

// Failures returns only the failed entries of one run.
func (s *Store) Failures(ctx context.Context, runID string) ([]Entry, error) {
	var entries []Entry
	query := `SELECT run_id, country, file, year, stage, error_code, error, warnings, recorded_at
		FROM file_events WHERE run_id = ? AND stage = 'failed' ORDER BY country, file`
	if err := s.db.SelectContext(ctx, &entries, query, runID); err != nil {
		return nil, fmt.Errorf("failed to load failures for run %s: %w", runID, err)
	}
	return entries, nil
}
