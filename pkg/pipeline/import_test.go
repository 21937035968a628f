package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-butler/product-trends/pkg/domain"
)

func TestImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := `[
		{"id": "t3_abc", "subreddit": "GooglePixel", "title": "Pixel 8 or Pixel 9?", "body": "help",
		 "url": "https://reddit.com/abc", "score": 42, "num_comments": 7, "created": 1767346200.5,
		 "sentiment_compound": 0.61, "sentiment_label": "positive"},
		{"id": "def", "title": "Galaxy S24", "created_utc": 1767346300},
		{"id": "", "title": "no id"},
		{"id": "ghi", "title": "   "}
	]`

	report, err := Import(ctx, s, domain.Phones, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Read)
	assert.Equal(t, 2, report.Saved)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Failed)

	p, err := s.GetPost(ctx, domain.Phones, "abc")
	require.NoError(t, err)
	assert.Equal(t, "GooglePixel", p.Subreddit)
	assert.Equal(t, 42, p.Score)
	assert.Equal(t, 7, p.NumComments)
	assert.InDelta(t, 0.61, p.SentimentCompound, 1e-9)
	assert.Equal(t, "positive", p.SentimentLabel)
	assert.True(t, time.Unix(1767346200, 5e8).Equal(p.CreatedAt), "fractional seconds survive storage: %v", p.CreatedAt)

	q, err := s.GetPost(ctx, domain.Phones, "def")
	require.NoError(t, err)
	assert.True(t, time.Unix(1767346300, 0).Equal(q.CreatedAt))
}

func TestImport_Reimport_KeepsEntities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := `[{"id": "abc", "title": "Pixel 8", "score": 1}]`

	_, err := Import(ctx, s, domain.Phones, strings.NewReader(in))
	require.NoError(t, err)
	require.NoError(t, s.SetEntities(ctx, domain.Phones, "abc", []string{"Pixel 8"}, time.Now()))

	_, err = Import(ctx, s, domain.Phones, strings.NewReader(`[{"id": "abc", "title": "Pixel 8", "score": 9}]`))
	require.NoError(t, err)

	p, err := s.GetPost(ctx, domain.Phones, "abc")
	require.NoError(t, err)
	assert.Equal(t, 9, p.Score)
	assert.True(t, p.Processed)
}

func TestImport_BadJSON(t *testing.T) {
	_, err := Import(context.Background(), newTestStore(t), domain.Phones, strings.NewReader(`{"id": 1`))
	assert.Error(t, err)
}

func TestImport_StoreFailure(t *testing.T) {
	report, err := Import(context.Background(), rejectingSaver{}, domain.Phones, strings.NewReader(`[{"id": "a", "title": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Warnings, 1)
}
