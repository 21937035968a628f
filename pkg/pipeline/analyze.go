package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/daniel-butler/product-trends/pkg/canon"
	"github.com/daniel-butler/product-trends/pkg/domain"
	"github.com/daniel-butler/product-trends/pkg/postag"
	"github.com/daniel-butler/product-trends/pkg/store"
	"github.com/daniel-butler/product-trends/pkg/trend"
)

// ErrNoHistory is returned by Rising when fewer than two snapshots exist.
var ErrNoHistory = errors.New("need at least two trend snapshots")

// TrendReport is the ranking of one domain plus how many items each stage
// kept.
type TrendReport struct {
	Domain           string
	Posts            int // processed posts read
	Undecodable      int // posts whose stored list could not be decoded
	Raw              int // raw entities across all posts
	Candidates       int // raw entities that passed the POS filter
	Resolved         int // candidates that resolved to a canonical name
	TemplateFailures int
	Entries          []trend.Entry
}

// Empty reports whether no trends were found.
func (r *TrendReport) Empty() bool { return len(r.Entries) == 0 }

type stage struct {
	domain   *domain.Domain
	filter   *postag.Filter
	resolver *canon.Resolver
}

// Analyzer turns stored raw entity lists into ranked canonical names.
type Analyzer struct {
	store  Store
	stages map[string]*stage
	opts   options
}

// NewAnalyzer builds the POS filter and resolver of every domain in reg.
func NewAnalyzer(st Store, reg *domain.Registry, oracle postag.Oracle, opts ...Option) (*Analyzer, error) {
	o := buildOptions(opts)
	a := &Analyzer{store: st, stages: make(map[string]*stage), opts: o}

	for _, d := range reg.All() {
		log := o.logger.With("domain", d.Name)
		filter, err := postag.NewFilter(oracle, d.POSTags,
			postag.WithCacheSize(o.cacheSize),
			postag.WithTimeout(o.timeout),
			postag.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("building %s POS filter: %w", d.Name, err)
		}
		a.stages[d.Name] = &stage{
			domain:   d,
			filter:   filter,
			resolver: canon.NewResolver(d.Rules, o.logger),
		}
	}
	return a, nil
}

func (a *Analyzer) stage(name string) (*stage, error) {
	s, ok := a.stages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDomain, name)
	}
	return s, nil
}

// Trends ranks the canonical names mentioned across the processed posts of
// the named domain. topN <= 0 uses the domain's configured length. When
// sentiments are given only posts carrying one of those labels count.
func (a *Analyzer) Trends(ctx context.Context, name string, topN int, sentiments ...string) (*TrendReport, error) {
	s, err := a.stage(name)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.domain.TopN
	}
	return a.trends(ctx, s, topN, sentiments)
}

func (a *Analyzer) trends(ctx context.Context, s *stage, topN int, sentiments []string) (*TrendReport, error) {
	name := s.domain.Name
	posts, err := a.store.ListPosts(ctx, name, store.ListOptions{Processed: true, Sentiments: sentiments})
	if err != nil {
		return nil, fmt.Errorf("listing %s posts: %w", name, err)
	}

	report := &TrendReport{Domain: name, Posts: len(posts)}
	var raw []string
	for _, p := range posts {
		entities, err := p.Entities()
		if err != nil {
			report.Undecodable++
			a.opts.logger.Warn("skipping undecodable entity list", "domain", name, "post_id", p.ID, "error", err)
			continue
		}
		raw = append(raw, entities...)
	}
	report.Raw = len(raw)

	candidates := s.filter.Filter(ctx, raw)
	report.Candidates = len(candidates)

	names, failed := s.resolver.ResolveAll(candidates)
	report.Resolved = len(names)
	report.TemplateFailures = failed

	report.Entries = trend.Rank(names, topN)
	return report, nil
}

// Snapshot saves the full current ranking of the named domain under date
// (YYYY-MM-DD) for later velocity comparison.
func (a *Analyzer) Snapshot(ctx context.Context, name, date string) (int, error) {
	s, err := a.stage(name)
	if err != nil {
		return 0, err
	}
	report, err := a.trends(ctx, s, 0, nil)
	if err != nil {
		return 0, err
	}
	n, err := a.store.TakeSnapshot(ctx, name, date, report.Entries)
	if err != nil {
		return 0, fmt.Errorf("saving %s snapshot: %w", name, err)
	}
	return n, nil
}

// Rising compares the two most recent snapshots of the named domain.
func (a *Analyzer) Rising(ctx context.Context, name string, limit int) ([]trend.Mover, error) {
	if _, err := a.stage(name); err != nil {
		return nil, err
	}

	dates, err := a.store.SnapshotDates(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing %s snapshots: %w", name, err)
	}
	if len(dates) < 2 {
		return nil, ErrNoHistory
	}

	current, err := a.store.SnapshotCounts(ctx, name, dates[0])
	if err != nil {
		return nil, err
	}
	previous, err := a.store.SnapshotCounts(ctx, name, dates[1])
	if err != nil {
		return nil, err
	}
	return trend.Rising(current, previous, limit), nil
}
