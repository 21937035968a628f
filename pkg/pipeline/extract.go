package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-butler/product-trends/pkg/regroup"
	"github.com/daniel-butler/product-trends/pkg/store"
	"github.com/daniel-butler/product-trends/pkg/tagger"
)

// Report summarises one extraction batch.
type Report struct {
	RunID          string
	Domain         string
	All            bool
	Found          int // posts selected for the batch
	Processed      int // posts the tagger was run on
	Updated        int // posts whose entity list was written
	Entities       int // raw entities written
	TaggerFailures int
	StoreFailures  int
	Warnings       []string
}

// Empty reports whether the batch had no posts to work on.
func (r *Report) Empty() bool { return r.Found == 0 }

// Failed is the number of posts that hit a tagger or store failure.
func (r *Report) Failed() int { return r.TaggerFailures + r.StoreFailures }

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Extractor tags stored posts and saves their raw entity lists.
type Extractor struct {
	store  Store
	tagger tagger.Tagger
	opts   options
}

// NewExtractor returns an Extractor writing to st and tagging with tg.
func NewExtractor(st Store, tg tagger.Tagger, opts ...Option) *Extractor {
	return &Extractor{store: st, tagger: tg, opts: buildOptions(opts)}
}

// ErrTaggerUnavailable is returned by Run when the tagger cannot be reached.
var ErrTaggerUnavailable = errors.New("tagger unavailable")

// Run extracts entities for the unprocessed posts of domain, or for every
// post when all is set. A tagger failure stores an empty list for that
// post and a store failure skips it; both become warnings.
//
// A connection failure, or failureLimit tagger failures in a row, means
// the tagger is down: Run stops, leaves the failed streak unprocessed and
// returns ErrTaggerUnavailable. Otherwise Run only returns an error when
// the posts cannot be listed or ctx ends.
func (e *Extractor) Run(ctx context.Context, domain string, all bool) (*Report, error) {
	log := e.opts.logger.With("domain", domain)
	started := e.opts.now()

	posts, err := e.store.ListPosts(ctx, domain, store.ListOptions{Unprocessed: !all})
	if err != nil {
		return nil, fmt.Errorf("listing %s posts: %w", domain, err)
	}

	report := &Report{
		RunID:  uuid.NewString(),
		Domain: domain,
		All:    all,
		Found:  len(posts),
	}
	log = log.With("run_id", report.RunID)
	log.Info("extraction started", "posts", len(posts), "all", all)

	// tagger failures are held until a later success shows the tagger is up
	var pending []*store.Post
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			e.record(ctx, report, started)
			return report, err
		}

		entities, err := regroup.Extract(ctx, e.tagger, regroup.PostText(p.Title, p.Body), e.opts.timeout)
		report.Processed++
		if err != nil {
			report.TaggerFailures++
			report.warn("post %s: tagger failed: %v", p.ID, err)
			log.Warn("tagger failed", "post_id", p.ID, "error", err)
			pending = append(pending, p)

			if unreachable(err) || len(pending) >= e.opts.failureLimit {
				log.Error("tagger unavailable, stopping", "failed_in_a_row", len(pending), "error", err)
				e.record(ctx, report, started)
				return report, fmt.Errorf("%w: %v", ErrTaggerUnavailable, err)
			}
			continue
		}

		for _, f := range pending {
			e.save(ctx, log, report, f, []string{})
		}
		pending = nil
		e.save(ctx, log, report, p, entities)
	}
	for _, f := range pending {
		e.save(ctx, log, report, f, []string{})
	}

	e.record(ctx, report, started)
	log.Info("extraction finished",
		"processed", report.Processed,
		"updated", report.Updated,
		"failed", report.Failed(),
	)
	return report, nil
}

func (e *Extractor) save(ctx context.Context, log *slog.Logger, report *Report, p *store.Post, entities []string) {
	if err := e.store.SetEntities(ctx, report.Domain, p.ID, entities, e.opts.now()); err != nil {
		report.StoreFailures++
		report.warn("post %s: saving entities: %v", p.ID, err)
		log.Warn("saving entities failed", "post_id", p.ID, "error", err)
		return
	}
	report.Updated++
	report.Entities += len(entities)
	log.Debug("post processed", "post_id", p.ID, "entities", len(entities))
}

// unreachable reports whether err is a network-level failure to reach the
// tagger rather than a rejection of one text.
func unreachable(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) || errors.As(err, &dnsErr)
}

// record saves the run row even when ctx was cancelled mid-batch.
func (e *Extractor) record(ctx context.Context, report *Report, started time.Time) {
	run := &store.Run{
		ID:         report.RunID,
		Domain:     report.Domain,
		All:        report.All,
		Processed:  report.Processed,
		Updated:    report.Updated,
		Failed:     report.Failed(),
		StartedAt:  started,
		FinishedAt: e.opts.now(),
	}
	if err := e.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		report.warn("recording run: %v", err)
		e.opts.logger.Warn("recording run failed", "domain", report.Domain, "run_id", report.RunID, "error", err)
	}
}
