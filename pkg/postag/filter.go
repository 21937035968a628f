package postag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 4096

// Filter keeps entity strings whose every token carries an allowed POS tag.
// Verdicts are cached per distinct string, so the oracle runs once per
// string for the lifetime of the Filter.
type Filter struct {
	oracle  Oracle
	allowed mapset.Set[string]
	cache   *lru.Cache[string, bool]
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Filter.
type Option func(*filterOptions)

type filterOptions struct {
	cacheSize int
	timeout   time.Duration
	logger    *slog.Logger
}

// WithCacheSize bounds the number of cached verdicts.
func WithCacheSize(n int) Option {
	return func(o *filterOptions) {
		o.cacheSize = n
	}
}

// WithTimeout bounds each oracle call.
func WithTimeout(d time.Duration) Option {
	return func(o *filterOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger used for oracle failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *filterOptions) {
		o.logger = l
	}
}

// NewFilter builds a Filter accepting only the given tags.
func NewFilter(oracle Oracle, allowedTags []string, opts ...Option) (*Filter, error) {
	if oracle == nil {
		return nil, fmt.Errorf("nil POS oracle")
	}
	if len(allowedTags) == 0 {
		return nil, fmt.Errorf("empty POS allow-set")
	}

	o := filterOptions{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = defaultCacheSize
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cache, err := lru.New[string, bool](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating verdict cache: %w", err)
	}

	return &Filter{
		oracle:  oracle,
		allowed: mapset.NewThreadUnsafeSet(allowedTags...),
		cache:   cache,
		timeout: o.timeout,
		logger:  o.logger,
	}, nil
}

// Allows reports whether tag is in the allow-set.
func (f *Filter) Allows(tag string) bool {
	return f.allowed.Contains(tag)
}

// Filter returns the members of mentions that pass the POS check, keeping
// their original order and multiplicity.
func (f *Filter) Filter(ctx context.Context, mentions []string) []string {
	kept := make(map[string]bool)
	for _, m := range mentions {
		if _, done := kept[m]; done {
			continue
		}
		kept[m] = f.Accept(ctx, m)
	}

	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if kept[m] {
			out = append(out, m)
		}
	}
	return out
}

// Accept reports whether a single mention passes the POS check. Blank
// mentions and mentions with no tokens are rejected, as are mentions the
// oracle fails on.
func (f *Filter) Accept(ctx context.Context, mention string) bool {
	if strings.TrimSpace(mention) == "" {
		return false
	}
	if ok, hit := f.cache.Get(mention); hit {
		return ok
	}

	tags, err := f.tag(ctx, mention)
	if err != nil {
		f.logger.Warn("POS tagging failed", "candidate", mention, "error", err)
		return false
	}

	ok := len(tags) > 0
	for _, tag := range tags {
		if !f.Allows(tag) {
			ok = false
			break
		}
	}
	f.cache.Add(mention, ok)
	return ok
}

func (f *Filter) tag(ctx context.Context, mention string) ([]string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.oracle.TagPOS(ctx, mention)
}
