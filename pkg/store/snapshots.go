package store

import (
	"context"
	"fmt"

	"github.com/daniel-butler/product-trends/pkg/trend"
)

// TakeSnapshot saves a trend ranking as the counts of domain on date
// (YYYY-MM-DD), replacing any snapshot already taken that day.
func (s *Store) TakeSnapshot(ctx context.Context, domain, date string, entries []trend.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM trend_snapshots WHERE domain = ? AND snapshot_date = ?`, domain, date); err != nil {
		return 0, fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trend_snapshots (domain, name, mention_count, snapshot_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, domain, e.Name, e.Count, date); err != nil {
			return 0, fmt.Errorf("insert snapshot row %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return len(entries), nil
}

// SnapshotDates returns the snapshot dates of domain, newest first.
func (s *Store) SnapshotDates(ctx context.Context, domain string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT snapshot_date FROM trend_snapshots
		WHERE domain = ?
		ORDER BY snapshot_date DESC
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

// SnapshotCounts returns the name counts saved for domain on date.
func (s *Store) SnapshotCounts(ctx context.Context, domain, date string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, mention_count FROM trend_snapshots
		WHERE domain = ? AND snapshot_date = ?
	`, domain, date)
	if err != nil {
		return nil, fmt.Errorf("snapshot counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

// PruneSnapshots removes snapshots of every domain older than beforeDate.
func (s *Store) PruneSnapshots(ctx context.Context, beforeDate string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trend_snapshots WHERE snapshot_date < ?`, beforeDate)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
