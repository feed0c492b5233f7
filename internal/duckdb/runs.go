package duckdb

import (
	"database/sql"
	"fmt"
	"time"
)

// Run is one row of the validation history.
type Run struct {
	File       FileFingerprint
	StartedAt  time.Time
	FinishedAt time.Time
	Strict     bool
	Passed     bool
	ErrorKind  string // empty when Passed
	Line       int    // 0 for whole-file failures and passes
	Message    string
	LinesRead  int // failing line number when the run failed
	Records    int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = `path, size, mod_time, started_at, finished_at, strict,
		passed, error_kind, line, message, lines_read, records`

// RecordRun appends a run to the history.
func (s *Store) RecordRun(r Run) error {
	_, err := s.db.Exec(`INSERT INTO validation_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.File.Path, r.File.Size, r.File.ModTime.UTC(),
		r.StartedAt.UTC(), r.FinishedAt.UTC(), r.Strict,
		r.Passed, r.ErrorKind, int64(r.Line), r.Message,
		int64(r.LinesRead), int64(r.Records))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM validation_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LastRun returns the newest run for path, or nil if it was never validated.
func (s *Store) LastRun(path string) (*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM validation_runs
		WHERE path=? ORDER BY started_at DESC LIMIT 1`, path)
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ClearRuns removes all recorded runs.
func (s *Store) ClearRuns() error {
	_, err := s.db.Exec("DELETE FROM validation_runs")
	return err
}

// scanRuns scans rows into Run slices.
func scanRuns(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			r                        Run
			line, linesRead, records int64
			errorKind, message       sql.NullString
		)
		if err := rows.Scan(
			&r.File.Path, &r.File.Size, &r.File.ModTime,
			&r.StartedAt, &r.FinishedAt, &r.Strict,
			&r.Passed, &errorKind, &line, &message,
			&linesRead, &records,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ErrorKind = errorKind.String
		r.Message = message.String
		r.Line = int(line)
		r.LinesRead = int(linesRead)
		r.Records = int(records)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
