package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/daniel-butler/product-trends/pkg/store"
)

// Record is one post as written by the external collector.
type Record struct {
	ID                string  `json:"id"`
	Subreddit         string  `json:"subreddit"`
	Title             string  `json:"title"`
	Body              string  `json:"body"`
	URL               string  `json:"url"`
	Score             int     `json:"score"`
	NumComments       int     `json:"num_comments"`
	Created           float64 `json:"created"`
	CreatedUTC        float64 `json:"created_utc"`
	SentimentCompound float64 `json:"sentiment_compound"`
	SentimentLabel    string  `json:"sentiment_label"`
}

// Post converts the record into a post of domain.
func (r *Record) Post(domain string) *store.Post {
	created := r.Created
	if created == 0 {
		created = r.CreatedUTC
	}
	var at time.Time
	if created > 0 {
		sec, frac := math.Modf(created)
		at = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return &store.Post{
		Domain:            domain,
		ID:                strings.TrimPrefix(strings.TrimSpace(r.ID), "t3_"),
		Subreddit:         r.Subreddit,
		Title:             r.Title,
		Body:              r.Body,
		URL:               r.URL,
		Score:             r.Score,
		NumComments:       r.NumComments,
		SentimentCompound: r.SentimentCompound,
		SentimentLabel:    r.SentimentLabel,
		CreatedAt:         at,
	}
}

// ImportReport summarises one import.
type ImportReport struct {
	Domain   string
	Read     int
	Saved    int
	Skipped  int // records without an id or title
	Failed   int
	Warnings []string
}

// Import reads a JSON array of records from r and upserts them as posts
// of domain. Records missing an id or title are skipped. A record the
// store rejects is counted and reported, not fatal.
func Import(ctx context.Context, st PostSaver, domain string, r io.Reader, opts ...Option) (*ImportReport, error) {
	o := buildOptions(opts)

	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}

	report := &ImportReport{Domain: domain, Read: len(records)}
	for i := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p := records[i].Post(domain)
		if p.ID == "" || strings.TrimSpace(p.Title) == "" {
			report.Skipped++
			continue
		}
		if err := st.SavePost(ctx, p); err != nil {
			report.Failed++
			report.Warnings = append(report.Warnings, fmt.Sprintf("post %s: %v", p.ID, err))
			o.logger.Warn("saving post failed", "domain", domain, "post_id", p.ID, "error", err)
			continue
		}
		report.Saved++
	}

	o.logger.Info("import finished", "domain", domain, "read", report.Read, "saved", report.Saved)
	return report, nil
}
