package store

import (
	"context"
	"fmt"
	"time"
)

// Run is the outcome of one extraction batch.
type Run struct {
	ID         string
	Domain     string
	All        bool // reprocessed every post, not only new ones
	Processed  int
	Updated    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun saves a finished run.
func (s *Store) RecordRun(ctx context.Context, r *Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extraction_runs (id, domain, all_posts, processed, updated, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Domain, r.All, r.Processed, r.Updated, r.Failed, r.StartedAt.Unix(), r.FinishedAt.Unix())
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns the latest runs of domain, newest first.
func (s *Store) RecentRuns(ctx context.Context, domain string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, all_posts, processed, updated, failed, started_at, finished_at
		FROM extraction_runs
		WHERE domain = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Domain, &r.All, &r.Processed, &r.Updated, &r.Failed, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
