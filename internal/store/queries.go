package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Run operations

// InsertRun creates a run record.
func (s *Store) InsertRun(run *Run) error {
	query := `
		INSERT INTO runs (id, started_at, prefix, command)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Prefix,
		run.Command,
	)
	if err != nil {
		return wrapErr(err, "failed to insert run %s", run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID, including its rewrite count.
func (s *Store) GetRun(id string) (*Run, error) {
	query := `
		SELECT r.id, r.started_at, r.prefix, r.command, COUNT(w.id)
		FROM runs r
		LEFT JOIN rewrites w ON w.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id
	`

	run, err := scanRun(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get run %s", id)
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]*Run, error) {
	query := `
		SELECT r.id, r.started_at, r.prefix, r.command, COUNT(w.id)
		FROM runs r
		LEFT JOIN rewrites w ON w.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.rowid DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapErr(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun() (*Run, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs recorded")
	}
	return runs[0], nil
}

// FindRun resolves a full run ID or a unique prefix of one, as shown by
// the history table.
func (s *Store) FindRun(ref string) (*Run, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty run ID")
	}

	rows, err := s.db.Query(`SELECT id FROM runs WHERE substr(id, 1, ?) = ?`, len(ref), ref)
	if err != nil {
		return nil, wrapErr(err, "failed to find run %s", ref)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("run %s not found", ref)
	case 1:
		return s.GetRun(ids[0])
	default:
		return nil, fmt.Errorf("run ID %s is ambiguous (%d matches)", ref, len(ids))
	}
}

// DeleteRun removes a run and, via cascade, its rewrites.
func (s *Store) DeleteRun(id string) error {
	result, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return wrapErr(err, "failed to delete run %s", id)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// Rewrite operations

// InsertRewrite records a rewrite and returns its ID.
func (s *Store) InsertRewrite(rw *Rewrite) (int64, error) {
	query := `
		INSERT INTO rewrites (run_id, path, old_line, new_line, rewritten_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		rw.RunID,
		rw.Path,
		rw.OldLine,
		rw.NewLine,
		rw.RewrittenAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, wrapErr(err, "failed to insert rewrite for %s", rw.Path)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get rewrite ID: %w", err)
	}
	return id, nil
}

// ListRewrites returns the rewrites of a run, newest first.
func (s *Store) ListRewrites(runID string) ([]*Rewrite, error) {
	query := `
		SELECT id, run_id, path, old_line, new_line, rewritten_at
		FROM rewrites
		WHERE run_id = ?
		ORDER BY id DESC
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, wrapErr(err, "failed to list rewrites for run %s", runID)
	}
	defer rows.Close()

	var rewrites []*Rewrite
	for rows.Next() {
		var rw Rewrite
		var rewrittenAt string

		if err := rows.Scan(&rw.ID, &rw.RunID, &rw.Path, &rw.OldLine, &rw.NewLine, &rewrittenAt); err != nil {
			return nil, fmt.Errorf("failed to scan rewrite: %w", err)
		}

		rw.RewrittenAt, err = time.Parse(timeLayout, rewrittenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rewritten_at for %s: %w", rw.Path, err)
		}

		rewrites = append(rewrites, &rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewrites: %w", err)
	}

	return rewrites, nil
}

// DeleteRewrite removes a single rewrite record.
func (s *Store) DeleteRewrite(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM rewrites WHERE id = ?`, id); err != nil {
		return wrapErr(err, "failed to delete rewrite %d", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string

	if err := row.Scan(&run.ID, &startedAt, &run.Prefix, &run.Command, &run.RewriteCount); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = t

	return &run, nil
}
