// Package pipeline runs the batch stages of trend detection: extracting raw
// entity lists from stored posts, and turning stored lists into ranked
// canonical product names.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/daniel-butler/product-trends/pkg/store"
	"github.com/daniel-butler/product-trends/pkg/trend"
)

// Store is the persistence the pipeline reads and writes.
type Store interface {
	ListPosts(ctx context.Context, domain string, opts store.ListOptions) ([]*store.Post, error)
	SetEntities(ctx context.Context, domain, id string, entities []string, at time.Time) error
	RecordRun(ctx context.Context, r *store.Run) error
	TakeSnapshot(ctx context.Context, domain, date string, entries []trend.Entry) (int, error)
	SnapshotDates(ctx context.Context, domain string) ([]string, error)
	SnapshotCounts(ctx context.Context, domain, date string) (map[string]int, error)
}

// Option configures an Extractor or Analyzer.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	timeout      time.Duration
	cacheSize    int
	failureLimit int
	now          func() time.Time
}

func defaultOptions() options {
	return options{
		logger:       slog.Default(),
		timeout:      30 * time.Second,
		failureLimit: 5,
		now:          time.Now,
	}
}

// WithLogger sets the logger for per-item warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds each tagger or POS oracle call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithCacheSize sets how many POS verdicts each domain filter remembers.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithFailureLimit sets how many tagger failures in a row stop an
// extraction run. Values below 1 are ignored.
func WithFailureLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.failureLimit = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
