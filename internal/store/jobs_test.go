package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(url string) models.Job {
	return models.Job{
		Title:            "Data Engineer",
		Company:          "Corp",
		RoleCategory:     "Data Engineer",
		Source:           "WTTJ",
		PublishedDate:    sql.NullTime{Time: time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC), Valid: true},
		Location:         "Paris",
		URL:              url,
		Snippet:          "Pipelines de données",
		DetectedKeywords: "data, data engineer",
		ScrapedAt:        time.Date(2026, 1, 27, 12, 0, 0, 0, time.UTC),
	}
}

func TestBulkUpsert_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []models.Job{testJob("https://x.test/job/1"), testJob("https://x.test/job/2")}

	stats, err := s.BulkUpsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, UpsertStats{Added: 2}, stats)

	first, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)

	//replaying the identical batch adds nothing and keeps ids stable
	stats, err = s.BulkUpsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Added)
	assert.Equal(t, 2, stats.Updated) // freshness refresh counts as update

	second, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestUpsert_URLIsNaturalKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	//same URL, one record missing company, the other missing location
	a := testJob("https://x.test/job/1")
	a.Company = ""
	b := testJob("https://x.test/job/1")
	b.Location = ""
	b.Title = "Ingénieur Data" // disagreeing title must not overwrite

	_, err := s.BulkUpsert(ctx, []models.Job{a, b})
	require.NoError(t, err)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	//both partial fields populated, first-seen values kept
	assert.Equal(t, "Data Engineer", jobs[0].Title)
	assert.Equal(t, "Corp", jobs[0].Company)
	assert.Equal(t, "Paris", jobs[0].Location)
}

func TestUpsert_MergeFillsOnlyEmptyFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testJob("https://x.test/job/1")
	a.Snippet = ""
	_, err := s.BulkUpsert(ctx, []models.Job{a})
	require.NoError(t, err)

	b := testJob("https://x.test/job/1")
	b.Snippet = "nouvelle description"
	b.Company = "Imposter Inc"
	_, err = s.BulkUpsert(ctx, []models.Job{b})
	require.NoError(t, err)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "nouvelle description", jobs[0].Snippet) // filled
	assert.Equal(t, "Corp", jobs[0].Company)                 // not overwritten
}

func TestUpsert_RefreshesScrapedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testJob("https://x.test/job/1")
	_, err := s.BulkUpsert(ctx, []models.Job{a})
	require.NoError(t, err)

	b := testJob("https://x.test/job/1")
	b.ScrapedAt = a.ScrapedAt.Add(24 * time.Hour)
	stats, err := s.BulkUpsert(ctx, []models.Job{b})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, b.ScrapedAt.Unix(), jobs[0].ScrapedAt.Unix())
}

func TestSetApplied_SurvivesRescrape(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.BulkUpsert(ctx, []models.Job{testJob("https://x.test/job/1")})
	require.NoError(t, err)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	id := jobs[0].ID

	ok, err := s.SetApplied(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, ok)

	//re-scraping the same posting must never reset applied
	_, err = s.BulkUpsert(ctx, []models.Job{testJob("https://x.test/job/1")})
	require.NoError(t, err)

	jobs, err = s.ListAll(ctx, 0)
	require.NoError(t, err)
	assert.True(t, jobs[0].Applied)

	//idempotent, and false for unknown ids
	ok, err = s.SetApplied(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SetApplied(ctx, 99999, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsert_DegradedKeyCollapses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	//no URL, identical triple, two different adapters
	a := testJob("")
	a.Source = "Indeed"
	b := testJob("")
	b.Source = "HelloWork"

	stats, err := s.BulkUpsert(ctx, []models.Job{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Updated)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Indeed", jobs[0].Source) // first-seen wins
}

func TestUpsert_EmptyURLsDoNotCollide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testJob("")
	b := testJob("")
	b.Title = "Data Analyst"

	stats, err := s.BulkUpsert(ctx, []models.Job{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Added)
}

func TestListAll_OrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := testJob("https://x.test/job/old")
	old.PublishedDate = sql.NullTime{Time: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), Valid: true}
	fresh := testJob("https://x.test/job/new")
	fresh.PublishedDate = sql.NullTime{Time: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), Valid: true}
	undated := testJob("https://x.test/job/undated")
	undated.PublishedDate = sql.NullTime{}

	_, err := s.BulkUpsert(ctx, []models.Job{old, undated, fresh})
	require.NoError(t, err)

	jobs, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "https://x.test/job/new", jobs[0].URL)
	assert.Equal(t, "https://x.test/job/old", jobs[1].URL)
	assert.Equal(t, "https://x.test/job/undated", jobs[2].URL) // null dates last

	limited, err := s.ListAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "https://x.test/job/new", limited[0].URL)
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testJob("https://x.test/job/1")
	b := testJob("https://x.test/job/2")
	b.RoleCategory = "Data Analyst"
	b.Source = "Indeed"
	b.Location = "Lyon"

	_, err := s.BulkUpsert(ctx, []models.Job{a, b})
	require.NoError(t, err)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["Data Engineer"])
	assert.Equal(t, 1, stats.ByCategory["Data Analyst"])
	assert.Equal(t, 1, stats.BySource["WTTJ"])
	assert.Equal(t, 1, stats.BySource["Indeed"])
	require.NotEmpty(t, stats.ByDay)
	require.Len(t, stats.TopLocations, 2)
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.BulkUpsert(ctx, []models.Job{testJob("https://x.test/job/1")})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}
