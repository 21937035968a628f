package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-butler/product-trends/pkg/domain"
	"github.com/daniel-butler/product-trends/pkg/postag"
	"github.com/daniel-butler/product-trends/pkg/store"
	"github.com/daniel-butler/product-trends/pkg/tagger"
	"github.com/daniel-butler/product-trends/pkg/trend"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func savePosts(t *testing.T, s *store.Store, domainName string, posts map[string]string) {
	t.Helper()
	created := int64(1000)
	for id, title := range posts {
		created++
		require.NoError(t, s.SavePost(context.Background(), &store.Post{
			Domain:    domainName,
			ID:        id,
			Title:     title,
			CreatedAt: time.Unix(created, 0),
		}))
	}
}

// wordTagger marks every capitalised word as the start of a PRODUCT
// entity and every following digit run as its continuation.
var wordTagger = tagger.TaggerFunc(func(ctx context.Context, text string) ([]tagger.Fragment, error) {
	if strings.Contains(text, "FAIL") {
		return nil, errors.New("tagger exploded")
	}
	var frags []tagger.Fragment
	for i, w := range strings.Fields(text) {
		tag := "O"
		switch {
		case w[0] >= 'A' && w[0] <= 'Z':
			tag = "B-PRODUCT"
		case w[0] >= '0' && w[0] <= '9':
			tag = "I-PRODUCT"
		}
		if i > 0 {
			w = " " + w
		}
		frags = append(frags, tagger.Fragment{Text: w, Tag: tag})
	}
	return frags, nil
})

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestExtractor_Run(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	savePosts(t, s, domain.Phones, map[string]string{
		"a": "Pixel 8 beats Pixel 8 today",
		"b": "this one will FAIL",
		"c": "nothing here",
	})
	logger, logs := newTestLogger()

	report, err := NewExtractor(s, wordTagger, WithLogger(logger)).Run(ctx, domain.Phones, false)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 3, report.Updated)
	assert.Equal(t, 1, report.TaggerFailures)
	assert.Equal(t, 0, report.StoreFailures)
	assert.Equal(t, 1, report.Entities)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "post b")
	assert.Contains(t, logs.String(), "tagger failed")

	a, err := s.GetPost(ctx, domain.Phones, "a")
	require.NoError(t, err)
	entities, err := a.Entities()
	require.NoError(t, err)
	assert.Equal(t, []string{"Pixel 8"}, entities, "deduplicated before storage")

	b, err := s.GetPost(ctx, domain.Phones, "b")
	require.NoError(t, err)
	assert.True(t, b.Processed, "tagger failure stores zero entities")
	assert.Equal(t, "[]", b.EntitiesJSON)

	runs, err := s.RecentRuns(ctx, domain.Phones, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestExtractor_Run_OnlyNewPostsUnlessAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	savePosts(t, s, domain.Phones, map[string]string{"a": "Pixel 8", "b": "Galaxy 24"})
	ex := NewExtractor(s, wordTagger)

	_, err := ex.Run(ctx, domain.Phones, false)
	require.NoError(t, err)

	again, err := ex.Run(ctx, domain.Phones, false)
	require.NoError(t, err)
	assert.True(t, again.Empty())

	all, err := ex.Run(ctx, domain.Phones, true)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Updated)
	assert.True(t, all.All)

	runs, err := s.RecentRuns(ctx, domain.Phones, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

type failingStore struct {
	*store.Store
	failID string
}

func (f failingStore) SetEntities(ctx context.Context, domain, id string, entities []string, at time.Time) error {
	if id == f.failID {
		return errors.New("disk full")
	}
	return f.Store.SetEntities(ctx, domain, id, entities, at)
}

func TestExtractor_Run_StoreFailureContinues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	savePosts(t, s, domain.Phones, map[string]string{"a": "Pixel 8", "b": "Galaxy 24", "c": "Nord 3"})

	report, err := NewExtractor(failingStore{Store: s, failID: "b"}, wordTagger).Run(ctx, domain.Phones, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StoreFailures)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Failed())

	b, _ := s.GetPost(ctx, domain.Phones, "b")
	assert.False(t, b.Processed)
	c, _ := s.GetPost(ctx, domain.Phones, "c")
	assert.True(t, c.Processed)
}

func TestExtractor_Run_StoreUnreachable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := NewExtractor(s, wordTagger).Run(context.Background(), domain.Phones, false)
	assert.Error(t, err)
}

func TestExtractor_Run_Cancelled(t *testing.T) {
	s := newTestStore(t)
	savePosts(t, s, domain.Phones, map[string]string{"a": "Pixel 8", "b": "Galaxy 24"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := tagger.TaggerFunc(func(c context.Context, text string) ([]tagger.Fragment, error) {
		cancel()
		return wordTagger(c, text)
	})

	report, err := NewExtractor(s, cancelling).Run(ctx, domain.Phones, false)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Processed)

	runs, err := s.RecentRuns(context.Background(), domain.Phones, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "partial run is still recorded")
}

// nounOracle tags every word NNP except adjectives it knows about.
var nounOracle = postag.OracleFunc(func(ctx context.Context, text string) ([]string, error) {
	if strings.Contains(text, "oracle-down") {
		return nil, errors.New("oracle unavailable")
	}
	var tags []string
	for _, w := range strings.Fields(text) {
		if w == "great" {
			tags = append(tags, "JJ")
			continue
		}
		tags = append(tags, postag.ProperNoun)
	}
	return tags, nil
})

type corruptStore struct {
	*store.Store
	corruptID string
}

func (c corruptStore) ListPosts(ctx context.Context, domain string, opts store.ListOptions) ([]*store.Post, error) {
	posts, err := c.Store.ListPosts(ctx, domain, opts)
	for _, p := range posts {
		if p.ID == c.corruptID {
			p.EntitiesJSON = `["unterminated`
		}
	}
	return posts, err
}

func newTestAnalyzer(t *testing.T, st Store, opts ...Option) *Analyzer {
	t.Helper()
	reg, err := domain.NewRegistry(nil)
	require.NoError(t, err)
	a, err := NewAnalyzer(st, reg, nounOracle, opts...)
	require.NoError(t, err)
	return a
}

func setEntities(t *testing.T, s *store.Store, domainName string, lists map[string][]string) {
	t.Helper()
	posts := make(map[string]string, len(lists))
	for id := range lists {
		posts[id] = "post " + id
	}
	savePosts(t, s, domainName, posts)
	for id, entities := range lists {
		require.NoError(t, s.SetEntities(context.Background(), domainName, id, entities, time.Now()))
	}
}

func TestAnalyzer_Trends(t *testing.T) {
	s := newTestStore(t)
	setEntities(t, s, domain.Phones, map[string][]string{
		"p1": {"s24 ultra", "iphone 15 pro"},
		"p2": {"s24 ultra", "great"},
		"p3": {"unknownwidget", "Samsung", "oracle-down"},
		"p4": {"broken"},
	})
	logger, logs := newTestLogger()

	a := newTestAnalyzer(t, corruptStore{Store: s, corruptID: "p4"}, WithLogger(logger))
	report, err := a.Trends(context.Background(), domain.Phones, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Posts)
	assert.Equal(t, 1, report.Undecodable)
	assert.Equal(t, 7, report.Raw)
	assert.Equal(t, 5, report.Candidates)
	assert.Equal(t, 4, report.Resolved)
	assert.False(t, report.Empty())

	want := []trend.Entry{
		{Name: "Samsung Galaxy S24 Ultra", Count: 2},
		{Name: "iPhone 15 Pro", Count: 1},
		{Name: "Unknownwidget", Count: 1},
	}
	assert.ElementsMatch(t, want, report.Entries)
	assert.Equal(t, want[0], report.Entries[0])
	assert.Contains(t, logs.String(), "skipping undecodable entity list")
	assert.Contains(t, logs.String(), "POS tagging failed")
}

func TestAnalyzer_Trends_TopN(t *testing.T) {
	s := newTestStore(t)
	setEntities(t, s, domain.Phones, map[string][]string{
		"p1": {"pixel 8", "pixel 8", "oneplus 12", "xiaomi 14"},
	})

	report, err := newTestAnalyzer(t, s).Trends(context.Background(), domain.Phones, 1)
	require.NoError(t, err)
	assert.Equal(t, []trend.Entry{{Name: "Google Pixel 8", Count: 2}}, report.Entries)
}

func TestAnalyzer_Trends_Empty(t *testing.T) {
	s := newTestStore(t)

	report, err := newTestAnalyzer(t, s).Trends(context.Background(), domain.Tablets, 0)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Zero(t, report.Posts)
}

func TestAnalyzer_UnknownDomain(t *testing.T) {
	a := newTestAnalyzer(t, newTestStore(t))

	_, err := a.Trends(context.Background(), "watches", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
	_, err = a.Rising(context.Background(), "watches", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestAnalyzer_SnapshotAndRising(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newTestAnalyzer(t, s)

	_, err := a.Rising(ctx, domain.Phones, 10)
	assert.ErrorIs(t, err, ErrNoHistory)

	_, err = s.TakeSnapshot(ctx, domain.Phones, "2026-01-01", []trend.Entry{
		{Name: "Google Pixel 8", Count: 1},
		{Name: "OnePlus 12", Count: 4},
	})
	require.NoError(t, err)

	setEntities(t, s, domain.Phones, map[string][]string{
		"p1": {"pixel 8", "oneplus 12"},
		"p2": {"pixel 8", "iphone 15"},
		"p3": {"pixel 8", "iphone 15"},
	})
	n, err := a.Snapshot(ctx, domain.Phones, "2026-01-08")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	movers, err := a.Rising(ctx, domain.Phones, 10)
	require.NoError(t, err)
	require.Len(t, movers, 2)
	assert.Equal(t, "Google Pixel 8", movers[0].Name)
	assert.Equal(t, trend.StatusHot, movers[0].Status)
	assert.Equal(t, "iPhone 15", movers[1].Name)
	assert.Equal(t, trend.StatusNew, movers[1].Status)
}

func saveOrdered(t *testing.T, s *store.Store, domainName string, titles ...string) {
	t.Helper()
	for i, title := range titles {
		require.NoError(t, s.SavePost(context.Background(), &store.Post{
			Domain:    domainName,
			ID:        fmt.Sprintf("p%d", i+1),
			Title:     title,
			CreatedAt: time.Unix(int64(1000+i), 0),
		}))
	}
}

func TestExtractor_Run_TaggerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := newTestStore(t)
	ctx := context.Background()
	saveOrdered(t, s, domain.Phones, "Pixel 8", "Galaxy 24", "Nord 3")

	report, err := NewExtractor(s, tagger.NewClient(url, "")).Run(ctx, domain.Phones, false)
	require.ErrorIs(t, err, ErrTaggerUnavailable)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Processed)
	assert.Zero(t, report.Updated)

	total, processed, err := s.CountPosts(ctx, domain.Phones)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Zero(t, processed, "an outage leaves every post for the next run")

	runs, err := s.RecentRuns(ctx, domain.Phones, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestExtractor_Run_FailureStreakStops(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveOrdered(t, s, domain.Phones, "Pixel 8", "Galaxy 24", "Nord 3")
	overloaded := tagger.TaggerFunc(func(context.Context, string) ([]tagger.Fragment, error) {
		return nil, errors.New("API error 503: model overloaded")
	})

	report, err := NewExtractor(s, overloaded, WithFailureLimit(2)).Run(ctx, domain.Phones, false)
	require.ErrorIs(t, err, ErrTaggerUnavailable)
	assert.Equal(t, 2, report.Processed)

	_, processed, err := s.CountPosts(ctx, domain.Phones)
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestExtractor_Run_IsolatedFailuresAreStored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saveOrdered(t, s, domain.Phones, "one FAIL", "Pixel 8", "two FAIL", "Galaxy 24", "three FAIL")

	report, err := NewExtractor(s, wordTagger, WithFailureLimit(2)).Run(ctx, domain.Phones, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TaggerFailures)
	assert.Equal(t, 5, report.Updated)

	p1, err := s.GetPost(ctx, domain.Phones, "p1")
	require.NoError(t, err)
	assert.True(t, p1.Processed)
	assert.Equal(t, "[]", p1.EntitiesJSON)
}

func TestAnalyzer_Trends_Sentiments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for id, label := range map[string]string{"pos": "positive", "neu": "neutral", "neg": "negative"} {
		require.NoError(t, s.SavePost(ctx, &store.Post{Domain: domain.Phones, ID: id, Title: id, SentimentLabel: label}))
		require.NoError(t, s.SetEntities(ctx, domain.Phones, id, []string{"pixel 8"}, time.Now()))
	}
	require.NoError(t, s.SetEntities(ctx, domain.Phones, "neg", []string{"pixel 8", "nord 3"}, time.Now()))
	a := newTestAnalyzer(t, s)

	report, err := a.Trends(ctx, domain.Phones, 0, "positive", "neutral")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Posts)
	assert.Equal(t, []trend.Entry{{Name: "Google Pixel 8", Count: 2}}, report.Entries)

	all, err := a.Trends(ctx, domain.Phones, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Posts)
	assert.Len(t, all.Entries, 2)
}
