package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/daniel-butler/product-trends/pkg/config"
	"github.com/daniel-butler/product-trends/pkg/domain"
	"github.com/daniel-butler/product-trends/pkg/fetcher"
	"github.com/daniel-butler/product-trends/pkg/pipeline"
	"github.com/daniel-butler/product-trends/pkg/postag"
	"github.com/daniel-butler/product-trends/pkg/scheduler"
	"github.com/daniel-butler/product-trends/pkg/store"
	"github.com/daniel-butler/product-trends/pkg/tagger"
	"github.com/daniel-butler/product-trends/pkg/trend"
)

var Version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the global flags and everything built from them.
type app struct {
	fs         *flag.FlagSet
	dbPath     *string
	configPath *string
	out        io.Writer

	cfg    *config.Config
	logger *slog.Logger
	reg    *domain.Registry
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("product-trends", flag.ContinueOnError)
	fs.SetOutput(out)

	a := &app{
		fs:         fs,
		dbPath:     fs.String("db", "", "Path to SQLite database (default from config)"),
		configPath: fs.String("config", "", "Path to config file"),
		out:        out,
	}

	if len(args) == 0 {
		printUsage(out)
		return nil
	}

	cmd := args[0]

	if cmd == "-version" || cmd == "--version" {
		fmt.Fprintln(out, Version)
		return nil
	}

	switch cmd {
	case "import":
		return cmdImport(a, args[1:])
	case "fetch":
		return cmdFetch(a, args[1:])
	case "extract":
		return cmdExtract(a, args[1:])
	case "trends":
		return cmdTrends(a, args[1:])
	case "posts":
		return cmdPosts(a, args[1:])
	case "resolve":
		return cmdResolve(a, args[1:])
	case "snapshot":
		return cmdSnapshot(a, args[1:])
	case "domains":
		return cmdDomains(a, args[1:])
	case "runs":
		return cmdRuns(a, args[1:])
	case "watch":
		return cmdWatch(a, args[1:])
	case "version":
		fmt.Fprintln(out, Version)
		return nil
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `product-trends - Find trending phones, laptops and tablets in social posts

Commands:
  import <file>   Import posts from a JSON array ("-" reads stdin)
  fetch           Download the domain's subreddit feeds
  extract         Tag unprocessed posts and store their raw entities
                    -all          Re-extract every post
  trends          Show the most mentioned products
                    -n            Number of results
                    -rising       Sort by velocity (growth rate)
                    -sentiment    Only count posts with these labels (e.g. positive,neutral)
  posts           Show recent posts with sentiment and raw entities
  runs            Show recent extraction runs
  resolve <text>  Show the canonical name for a product mention
  snapshot        Save today's ranking for velocity tracking
                    -list         Show available snapshots
                    -prune        Remove old snapshots (>90 days)
  domains         List product domains
  watch           Fetch, extract and snapshot on the configured schedule
  version         Show version
  help            Show this help

Options:
  -db <path>      SQLite database path (default: ~/.product-trends/trends.db)
  -config <path>  Config file (default: ~/.product-trends/config.yaml)
  -domain <name>  phones, laptops or tablets (default: phones)

Environment:
  PRODUCT_TRENDS_CONFIG  Config file path
  PRODUCT_TRENDS_DB      SQLite database path
  TAGGER_URL             Token-classification endpoint (switches to the HTTP tagger)
  TAGGER_API_KEY         Bearer token for the tagger endpoint`)
}

func (a *app) domainFlag() *string {
	return a.fs.String("domain", domain.Phones, "Product domain")
}

// setup loads configuration once the subcommand flags are parsed.
func (a *app) setup() error {
	cfg, err := config.Load(config.Path(*a.configPath))
	if err != nil {
		return err
	}
	if *a.dbPath != "" {
		cfg.DBPath = *a.dbPath
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	reg, err := domain.NewRegistry(cfg.Overrides())
	if err != nil {
		return err
	}
	a.reg = reg
	return nil
}

func (a *app) domain(name string) (*domain.Domain, error) {
	d, err := a.reg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(domain.Names(), ", "))
	}
	return d, nil
}

func ensureDB(path string) (*store.Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	return store.Open(path)
}

func (a *app) tagger() tagger.Tagger {
	if a.cfg.Tagger.Backend == config.BackendHTTP {
		return tagger.NewClient(a.cfg.Tagger.URL, a.cfg.Tagger.APIKey,
			tagger.WithTimeout(a.cfg.TaggerTimeout()),
			tagger.WithWordSpacing(a.cfg.Tagger.WordSpacing),
		)
	}
	return tagger.NewProseTagger()
}

func (a *app) analyzer(st *store.Store) (*pipeline.Analyzer, error) {
	return pipeline.NewAnalyzer(st, a.reg, postag.NewProseOracle(),
		pipeline.WithLogger(a.logger),
		pipeline.WithCacheSize(a.cfg.POSCacheSize),
	)
}

func (a *app) location() *time.Location {
	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (a *app) today() string {
	return time.Now().In(a.location()).Format("2006-01-02")
}

// pruneCutoff is the first snapshot date kept when pruning snapshots older
// than days, in the timezone snapshot dates are written in.
func pruneCutoff(now time.Time, loc *time.Location, days int) string {
	return now.In(loc).AddDate(0, 0, -days).Format("2006-01-02")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "  Warning: %s\n", w)
	}
}

func cmdImport(a *app, args []string) error {
	domainName := a.domainFlag()
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if a.fs.NArg() < 1 {
		return fmt.Errorf("usage: product-trends import [-domain name] <file|->")
	}
	if err := a.setup(); err != nil {
		return err
	}
	if _, err := a.domain(*domainName); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path := a.fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := pipeline.Import(context.Background(), st, *domainName, in, pipeline.WithLogger(a.logger))
	if err != nil {
		return err
	}
	printWarnings(a.out, report.Warnings)
	fmt.Fprintf(a.out, "Imported %d of %d %s posts (%d skipped, %d failed).\n",
		report.Saved, report.Read, *domainName, report.Skipped, report.Failed)
	return nil
}

func cmdFetch(a *app, args []string) error {
	domainName := a.domainFlag()
	pause := a.fs.Duration("pause", 2*time.Second, "Wait between feeds")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	d, err := a.domain(*domainName)
	if err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(a.out, "Fetching %d %s feeds...\n", len(d.Subreddits), d.Name)
	report, err := a.collector(st, *pause).Run(ctx, d)
	if report != nil {
		printWarnings(a.out, report.Warnings)
		fmt.Fprintf(a.out, "Saved %d posts from %d feeds (%d feeds failed).\n",
			report.Saved, report.Feeds, report.FeedFailures)
	}
	return err
}

func (a *app) collector(st *store.Store, pause time.Duration) *pipeline.Collector {
	f := fetcher.New(
		fetcher.WithTimeout(a.cfg.FetchTimeout()),
		fetcher.WithUserAgent(a.cfg.Fetch.UserAgent),
	)
	return pipeline.NewCollector(f, st, pause, pipeline.WithLogger(a.logger))
}

func cmdExtract(a *app, args []string) error {
	domainName := a.domainFlag()
	all := a.fs.Bool("all", false, "Re-extract every post, not only new ones")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	if _, err := a.domain(*domainName); err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ex := pipeline.NewExtractor(st, a.tagger(),
		pipeline.WithLogger(a.logger),
		pipeline.WithTimeout(a.cfg.TaggerTimeout()),
	)
	report, err := ex.Run(ctx, *domainName, *all)
	if report == nil {
		return err
	}
	if report.Empty() {
		fmt.Fprintf(a.out, "No %s posts to extract. Run 'import' or 'fetch' first, or use -all.\n", *domainName)
		return err
	}
	printWarnings(a.out, report.Warnings)
	fmt.Fprintf(a.out, "Extracted %d entities from %d of %d posts (%d failed).\n",
		report.Entities, report.Updated, report.Found, report.Failed())
	return err
}

func cmdTrends(a *app, args []string) error {
	domainName := a.domainFlag()
	limit := a.fs.Int("n", 0, "Number of results (default from config)")
	rising := a.fs.Bool("rising", false, "Sort by velocity (growth rate)")
	sentiment := a.fs.String("sentiment", "", "Comma-separated sentiment labels to count (default all)")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	d, err := a.domain(*domainName)
	if err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	an, err := a.analyzer(st)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if *rising {
		movers, err := an.Rising(ctx, d.Name, *limit)
		switch {
		case errors.Is(err, pipeline.ErrNoHistory):
			fmt.Fprintln(a.out, "Need at least 2 snapshots for velocity calculation.")
			fmt.Fprintln(a.out, "Run 'product-trends snapshot' after each extraction to build history.")
			fmt.Fprintln(a.out, "\nFalling back to standard ranking...")
		case err != nil:
			return err
		default:
			printMovers(a.out, d, movers)
			return nil
		}
	}

	sentiments := splitList(*sentiment)
	report, err := an.Trends(ctx, d.Name, *limit, sentiments...)
	if err != nil {
		return err
	}
	if report.Empty() {
		fmt.Fprintf(a.out, "No %s trends found. Run 'extract' first.\n", strings.ToLower(d.Label))
		return nil
	}

	fmt.Fprintf(a.out, "Trending %ss (%d posts, %d mentions resolved):\n", strings.ToLower(d.Label), report.Posts, report.Resolved)
	if len(sentiments) > 0 {
		fmt.Fprintf(a.out, "Counting %s posts only.\n", strings.Join(sentiments, "/"))
	}
	for i, e := range report.Entries {
		fmt.Fprintf(a.out, "%2d. [%d mentions] %s\n", i+1, e.Count, e.Name)
	}
	return nil
}

func printMovers(out io.Writer, d *domain.Domain, movers []trend.Mover) {
	if len(movers) == 0 {
		fmt.Fprintln(out, "No rising products found.")
		return
	}

	fmt.Fprintf(out, "Rising %ss (gaining momentum):\n\n", strings.ToLower(d.Label))

	groups := map[trend.Status][]trend.Mover{}
	for _, m := range movers {
		groups[m.Status] = append(groups[m.Status], m)
	}

	if hot := groups[trend.StatusHot]; len(hot) > 0 {
		fmt.Fprintln(out, "🔥 HOT")
		for i, m := range hot {
			fmt.Fprintf(out, "%2d. [+%.0f%%] %s (%d → %d mentions)\n",
				i+1, m.Velocity*100, m.Name, m.Previous, m.Current)
		}
		fmt.Fprintln(out)
	}

	if rising := groups[trend.StatusRising]; len(rising) > 0 {
		fmt.Fprintln(out, "📈 RISING")
		for i, m := range rising {
			fmt.Fprintf(out, "%2d. [+%.0f%%] %s (%d → %d mentions)\n",
				i+1, m.Velocity*100, m.Name, m.Previous, m.Current)
		}
		fmt.Fprintln(out)
	}

	if fresh := groups[trend.StatusNew]; len(fresh) > 0 {
		fmt.Fprintln(out, "🆕 NEW (first seen this period)")
		for i, m := range fresh {
			fmt.Fprintf(out, "%2d. %s (%d mentions)\n", i+1, m.Name, m.Current)
		}
	}
}

func cmdPosts(a *app, args []string) error {
	domainName := a.domainFlag()
	limit := a.fs.Int("n", 10, "Number of posts")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	if _, err := a.domain(*domainName); err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	total, processed, err := st.CountPosts(ctx, *domainName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d posts, %d processed\n", *domainName, total, processed)

	posts, err := st.ListPosts(ctx, *domainName, store.ListOptions{Limit: *limit, Newest: true})
	if err != nil {
		return err
	}
	for _, p := range posts {
		label := p.SentimentLabel
		if label == "" {
			label = "no sentiment"
		}
		fmt.Fprintf(a.out, "\n[%s] r/%s %s (%s)\n", p.ID, p.Subreddit, p.Title, label)
		if !p.Processed {
			fmt.Fprintln(a.out, "    (not extracted)")
			continue
		}
		entities, err := p.Entities()
		if err != nil {
			fmt.Fprintf(a.out, "    (undecodable entities: %v)\n", err)
			continue
		}
		fmt.Fprintf(a.out, "    entities: %s\n", strings.Join(entities, ", "))
	}
	return nil
}

func cmdResolve(a *app, args []string) error {
	domainName := a.domainFlag()
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if a.fs.NArg() < 1 {
		return fmt.Errorf("usage: product-trends resolve [-domain name] <text>")
	}
	if err := a.setup(); err != nil {
		return err
	}
	d, err := a.domain(*domainName)
	if err != nil {
		return err
	}

	text := strings.Join(a.fs.Args(), " ")
	name, ok, err := d.Rules.Resolve(text)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.out, "%q: no canonical name (stop term or too short)\n", text)
		return nil
	}
	rule := d.Rules.RuleFor(text)
	if rule == "" {
		rule = "fallback"
	}
	fmt.Fprintf(a.out, "%s\n    rule: %s\n", name, rule)
	return nil
}

func cmdSnapshot(a *app, args []string) error {
	domainName := a.domainFlag()
	list := a.fs.Bool("list", false, "Show available snapshots")
	prune := a.fs.Bool("prune", false, "Remove snapshots older than -days")
	days := a.fs.Int("days", 90, "Snapshot age kept by -prune")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	if _, err := a.domain(*domainName); err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	if *list {
		dates, err := st.SnapshotDates(ctx, *domainName)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			fmt.Fprintln(a.out, "No snapshots yet. Run 'product-trends snapshot' to create one.")
			return nil
		}
		fmt.Fprintf(a.out, "Available %s snapshots:\n", *domainName)
		for _, d := range dates {
			fmt.Fprintf(a.out, "  %s\n", d)
		}
		return nil
	}

	if *prune {
		cutoff := pruneCutoff(time.Now(), a.location(), *days)
		n, err := st.PruneSnapshots(ctx, cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %d old snapshot entries (before %s)\n", n, cutoff)
		return nil
	}

	an, err := a.analyzer(st)
	if err != nil {
		return err
	}
	today := a.today()
	n, err := an.Snapshot(ctx, *domainName, today)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Snapshot saved: %s %s (%d entries)\n", *domainName, today, n)
	return nil
}

func cmdDomains(a *app, args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}

	for _, d := range a.reg.All() {
		fmt.Fprintf(a.out, "%-8s %-10s %2d rules, top %d, POS %s, %d feeds\n",
			d.Name, d.Label, d.Rules.Len(), d.TopN, strings.Join(d.POSTags, "/"), len(d.Subreddits))
	}
	return nil
}

func cmdRuns(a *app, args []string) error {
	domainName := a.domainFlag()
	limit := a.fs.Int("n", 10, "Number of runs")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}
	if _, err := a.domain(*domainName); err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.RecentRuns(context.Background(), *domainName, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(a.out, "No %s extraction runs yet. Run 'extract' first.\n", *domainName)
		return nil
	}

	loc := a.location()
	fmt.Fprintf(a.out, "Recent %s extraction runs:\n", *domainName)
	for _, r := range runs {
		scope := "new"
		if r.All {
			scope = "all"
		}
		fmt.Fprintf(a.out, "  %s  %-3s  %d processed, %d updated, %d failed (%s)  %s\n",
			r.StartedAt.In(loc).Format("2006-01-02 15:04"), scope,
			r.Processed, r.Updated, r.Failed, r.FinishedAt.Sub(r.StartedAt), r.ID)
	}
	return nil
}

func cmdWatch(a *app, args []string) error {
	fetch := a.fs.Bool("fetch", true, "Download feeds before each extraction")
	if err := a.fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(); err != nil {
		return err
	}

	st, err := ensureDB(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	an, err := a.analyzer(st)
	if err != nil {
		return err
	}
	ex := pipeline.NewExtractor(st, a.tagger(),
		pipeline.WithLogger(a.logger),
		pipeline.WithTimeout(a.cfg.TaggerTimeout()),
	)
	collector := a.collector(st, 2*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func() {
		if err := st.Ping(ctx); err != nil {
			a.logger.Error("database unreachable, skipping run", "error", err)
			return
		}
		for _, d := range a.reg.All() {
			log := a.logger.With("domain", d.Name)
			if *fetch {
				if _, err := collector.Run(ctx, d); err != nil {
					log.Error("collection failed", "error", err)
					return
				}
			}
			if _, err := ex.Run(ctx, d.Name, false); err != nil {
				log.Error("extraction failed", "error", err)
				return
			}
			if _, err := an.Snapshot(ctx, d.Name, a.today()); err != nil {
				log.Error("snapshot failed", "error", err)
			}
		}
	}

	sched, err := scheduler.NewScheduler(a.cfg.Timezone)
	if err != nil {
		return err
	}
	if err := sched.Schedule(a.cfg.Schedule, job); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	fmt.Fprintf(a.out, "Watching %d domains on %q, next run %s. Ctrl-C to stop.\n",
		len(a.reg.All()), a.cfg.Schedule, sched.Next().Format(time.RFC3339))
	<-ctx.Done()
	fmt.Fprintln(a.out, "Stopping...")
	return nil
}
