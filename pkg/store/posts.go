package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Post is one collected social-media post in a domain.
type Post struct {
	Domain            string
	ID                string
	Subreddit         string
	Title             string
	Body              string
	URL               string
	Score             int
	NumComments       int
	SentimentCompound float64
	SentimentLabel    string
	CreatedAt         time.Time

	// EntitiesJSON is the stored raw entity list, valid when Processed.
	EntitiesJSON string
	Processed    bool
	ProcessedAt  time.Time
}

// Entities decodes the stored raw entity list. An unprocessed post has
// no entities.
func (p *Post) Entities() ([]string, error) {
	if !p.Processed {
		return nil, nil
	}
	var entities []string
	if err := json.Unmarshal([]byte(p.EntitiesJSON), &entities); err != nil {
		return nil, fmt.Errorf("decode entities of post %s: %w", p.ID, err)
	}
	return entities, nil
}

// ListOptions narrows ListPosts.
type ListOptions struct {
	Unprocessed bool // only posts with no stored entity list
	Processed   bool // only posts with a stored entity list
	Limit       int  // 0 means no limit
	Newest      bool // newest first instead of oldest first

	// Sentiments keeps only posts with one of these labels, compared
	// case-insensitively. Empty keeps every post.
	Sentiments []string
}

// SavePost inserts or updates a post. A stored entity list is kept.
func (s *Store) SavePost(ctx context.Context, p *Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (domain, id, subreddit, title, body, url, score, num_comments,
			sentiment_compound, sentiment_label, created_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain, id) DO UPDATE SET
			subreddit = excluded.subreddit,
			title = excluded.title,
			body = excluded.body,
			url = excluded.url,
			score = excluded.score,
			num_comments = excluded.num_comments,
			sentiment_compound = excluded.sentiment_compound,
			sentiment_label = excluded.sentiment_label,
			created_ns = excluded.created_ns
	`,
		p.Domain, p.ID, p.Subreddit, p.Title, p.Body, p.URL, p.Score, p.NumComments,
		p.SentimentCompound, p.SentimentLabel, unixNanoOrZero(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save post %s: %w", p.ID, err)
	}
	return nil
}

const postColumns = `domain, id, subreddit, title, body, url, score, num_comments,
	sentiment_compound, sentiment_label, created_ns, extracted_entities, processed_at`

// GetPost returns one post.
func (s *Store) GetPost(ctx context.Context, domain, id string) (*Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE domain = ? AND id = ?`, domain, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// ListPosts returns posts of domain matching opts.
func (s *Store) ListPosts(ctx context.Context, domain string, opts ListOptions) ([]*Post, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + postColumns + ` FROM posts WHERE domain = ?`)
	args := []any{domain}

	switch {
	case opts.Unprocessed && !opts.Processed:
		b.WriteString(` AND extracted_entities IS NULL`)
	case opts.Processed && !opts.Unprocessed:
		b.WriteString(` AND extracted_entities IS NOT NULL`)
	}

	if len(opts.Sentiments) > 0 {
		b.WriteString(` AND LOWER(sentiment_label) IN (?` + strings.Repeat(`, ?`, len(opts.Sentiments)-1) + `)`)
		for _, label := range opts.Sentiments {
			args = append(args, strings.ToLower(strings.TrimSpace(label)))
		}
	}

	if opts.Newest {
		b.WriteString(` ORDER BY created_ns DESC, id DESC`)
	} else {
		b.WriteString(` ORDER BY created_ns ASC, id ASC`)
	}
	if opts.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts in domain and how many of them
// have a stored entity list.
func (s *Store) CountPosts(ctx context.Context, domain string) (total, processed int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(extracted_entities) FROM posts WHERE domain = ?
	`, domain).Scan(&total, &processed)
	if err != nil {
		return 0, 0, fmt.Errorf("count posts: %w", err)
	}
	return total, processed, nil
}

// SetEntities overwrites the raw entity list stored for a post.
func (s *Store) SetEntities(ctx context.Context, domain, id string, entities []string, at time.Time) error {
	if entities == nil {
		entities = []string{}
	}
	data, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET extracted_entities = ?, processed_at = ? WHERE domain = ? AND id = ?`,
		string(data), at.Unix(), domain, id,
	)
	if err != nil {
		return fmt.Errorf("set entities of post %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("set entities of post %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (*Post, error) {
	var p Post
	var created int64
	var entities sql.NullString
	var processedAt sql.NullInt64
	if err := sc.Scan(&p.Domain, &p.ID, &p.Subreddit, &p.Title, &p.Body, &p.URL, &p.Score,
		&p.NumComments, &p.SentimentCompound, &p.SentimentLabel, &created, &entities, &processedAt); err != nil {
		return nil, err
	}

	if created != 0 {
		p.CreatedAt = time.Unix(0, created).UTC()
	}
	if entities.Valid {
		p.Processed = true
		p.EntitiesJSON = entities.String
	}
	if processedAt.Valid {
		p.ProcessedAt = time.Unix(processedAt.Int64, 0).UTC()
	}
	return &p, nil
}

func unixNanoOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
