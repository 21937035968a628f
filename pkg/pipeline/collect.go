package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/daniel-butler/product-trends/pkg/domain"
	"github.com/daniel-butler/product-trends/pkg/feed"
	"github.com/daniel-butler/product-trends/pkg/store"
)

// Fetcher downloads one feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PostSaver upserts collected posts.
type PostSaver interface {
	SavePost(ctx context.Context, p *store.Post) error
}

// FeedURL returns the newest-posts feed of a subreddit. Entries that
// already look like a URL are used as-is.
func FeedURL(subreddit string) string {
	if strings.Contains(subreddit, "://") {
		return subreddit
	}
	return "https://www.reddit.com/r/" + strings.TrimPrefix(subreddit, "r/") + "/new/.rss"
}

// CollectReport summarises one feed collection.
type CollectReport struct {
	Domain        string
	Feeds         int
	FeedFailures  int
	Saved         int
	Skipped       int // entries without an id or title, or already seen
	StoreFailures int
	Warnings      []string
}

func (r *CollectReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Collector downloads a domain's subreddit feeds into the post store.
type Collector struct {
	fetcher Fetcher
	store   PostSaver
	pause   time.Duration
	opts    options
}

// NewCollector returns a Collector. pause is waited between feeds.
func NewCollector(f Fetcher, st PostSaver, pause time.Duration, opts ...Option) *Collector {
	return &Collector{fetcher: f, store: st, pause: pause, opts: buildOptions(opts)}
}

// Run fetches every feed of d and saves its entries. A feed that fails
// to download or parse is skipped with a warning.
func (c *Collector) Run(ctx context.Context, d *domain.Domain) (*CollectReport, error) {
	log := c.opts.logger.With("domain", d.Name)
	report := &CollectReport{Domain: d.Name}
	seen := mapset.NewThreadUnsafeSet[string]()

	for i, sub := range d.Subreddits {
		if i > 0 && c.pause > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(c.pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		url := FeedURL(sub)
		report.Feeds++
		data, err := c.fetcher.Fetch(ctx, url)
		if err == nil {
			var parsed *feed.Feed
			if parsed, err = feed.ParseFeed(data); err == nil {
				c.save(ctx, d.Name, sub, parsed, report, seen)
				continue
			}
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.FeedFailures++
		report.warn("feed %s: %v", url, err)
		log.Warn("feed failed", "url", url, "error", err)
	}

	log.Info("collection finished",
		"feeds", report.Feeds,
		"saved", report.Saved,
		"failed_feeds", report.FeedFailures,
	)
	return report, nil
}

func (c *Collector) save(ctx context.Context, name, sub string, f *feed.Feed, report *CollectReport, seen mapset.Set[string]) {
	for i := range f.Items {
		item := &f.Items[i]
		if item.ID == "" || item.Title == "" || !seen.Add(item.ID) {
			report.Skipped++
			continue
		}
		if err := c.store.SavePost(ctx, item.Post(name, strings.TrimPrefix(sub, "r/"))); err != nil {
			report.StoreFailures++
			report.warn("post %s: %v", item.ID, err)
			c.opts.logger.Warn("saving post failed", "domain", name, "post_id", item.ID, "error", err)
			continue
		}
		report.Saved++
	}
}
