// Package store provides SQLite-backed storage for collected posts, their
// extracted entity lists, trend snapshots and extraction run history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("not found")

// Store is the post database.
type Store struct {
	db *sql.DB
}

// Open creates or opens a store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			domain TEXT NOT NULL,
			id TEXT NOT NULL,
			subreddit TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			num_comments INTEGER NOT NULL DEFAULT 0,
			sentiment_compound REAL NOT NULL DEFAULT 0,
			sentiment_label TEXT NOT NULL DEFAULT '',
			created_ns INTEGER NOT NULL DEFAULT 0, -- unix nanoseconds
			extracted_entities TEXT,
			processed_at INTEGER,
			PRIMARY KEY (domain, id)
		);

		CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(domain, created_ns);

		CREATE TABLE IF NOT EXISTS trend_snapshots (
			domain TEXT NOT NULL,
			name TEXT NOT NULL,
			mention_count INTEGER NOT NULL,
			snapshot_date TEXT NOT NULL,
			PRIMARY KEY (domain, name, snapshot_date)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_date ON trend_snapshots(snapshot_date);

		CREATE TABLE IF NOT EXISTS extraction_runs (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			all_posts INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_domain ON extraction_runs(domain, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
