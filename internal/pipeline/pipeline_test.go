package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-jobradar/internal/classify"
	"go-jobradar/internal/config"
	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
	"go-jobradar/internal/store"
)

type fakeSource struct {
	name string
	jobs []models.RawJob
	err  error
	boom bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Scrape(_ context.Context, _ scraper.Request, sink progress.Sink) ([]models.RawJob, error) {
	sink.Emit(fmt.Sprintf("[%s] scraping", f.name))
	if f.boom {
		panic("selector vanished")
	}
	return f.jobs, f.err
}

func recentRaw(source, url string) models.RawJob {
	return models.RawJob{
		Title:         "Data Engineer",
		Company:       "Corp",
		Location:      "Paris",
		PublishedDate: "il y a 1 jour",
		URL:           url,
		Snippet:       "équipe data",
		Source:        source,
	}
}

func newTestOrchestrator(t *testing.T, sources ...scraper.Source) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine := classify.NewEngine(config.Default())
	return NewOrchestrator(sources, engine, st, zap.NewNop().Sugar(), 2), st
}

func TestRun_HappyPath(t *testing.T) {
	o, st := newTestOrchestrator(t,
		&fakeSource{name: "WTTJ", jobs: []models.RawJob{recentRaw("WTTJ", "https://x.test/job/1")}},
		&fakeSource{name: "Indeed", jobs: []models.RawJob{
			recentRaw("Indeed", "https://x.test/job/2"),
			{Title: "Stale Analyst", PublishedDate: "il y a 30 jours", URL: "https://x.test/job/3", Source: "Indeed"},
		}},
	)

	sink := &progress.BufferSink{}
	stats, err := o.Run(context.Background(), Options{Country: "France", Location: "France", Progress: sink})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalScraped)
	assert.Equal(t, 1, stats.FilteredOut)
	assert.Equal(t, 2, stats.Added)
	assert.Empty(t, stats.SourceErrors)

	jobs, err := st.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	//both the orchestrator and the adapters talked to the sink
	all := strings.Join(sink.Lines(), "\n")
	assert.Contains(t, all, "[WTTJ] scraping")
	assert.Contains(t, all, "Run finished")
}

func TestRun_FailingSourceIsContained(t *testing.T) {
	o, st := newTestOrchestrator(t,
		&fakeSource{name: "Indeed", err: errors.New("HTTP 403")},
		&fakeSource{name: "WTTJ", jobs: []models.RawJob{recentRaw("WTTJ", "https://x.test/job/1")}},
	)

	sink := &progress.BufferSink{}
	stats, err := o.Run(context.Background(), Options{Location: "France", Progress: sink})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, "HTTP 403", stats.SourceErrors["Indeed"])

	jobs, err := st.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	all := strings.Join(sink.Lines(), "\n")
	assert.Contains(t, all, "❌ Indeed")
}

func TestRun_PanickingSourceIsContained(t *testing.T) {
	o, _ := newTestOrchestrator(t,
		&fakeSource{name: "HelloWork", boom: true},
		&fakeSource{name: "WTTJ", jobs: []models.RawJob{recentRaw("WTTJ", "https://x.test/job/1")}},
	)

	stats, err := o.Run(context.Background(), Options{Location: "France"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Contains(t, stats.SourceErrors["HelloWork"], "panicked")
}

func TestRun_AllSourcesFailingStillSummarizes(t *testing.T) {
	o, _ := newTestOrchestrator(t,
		&fakeSource{name: "A", err: errors.New("down")},
		&fakeSource{name: "B", err: errors.New("down too")},
	)

	stats, err := o.Run(context.Background(), Options{Location: "France"})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalScraped)
	assert.Equal(t, 0, stats.Added)
	assert.Len(t, stats.SourceErrors, 2)
}

func TestRun_CrossSourceDedup(t *testing.T) {
	//same URL from two boards must collapse into one row
	o, st := newTestOrchestrator(t,
		&fakeSource{name: "WTTJ", jobs: []models.RawJob{recentRaw("WTTJ", "https://x.test/job/1")}},
		&fakeSource{name: "Indeed", jobs: []models.RawJob{recentRaw("Indeed", "https://x.test/job/1")}},
	)

	stats, err := o.Run(context.Background(), Options{Location: "France"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Updated)

	jobs, err := st.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestRun_Cancellation(t *testing.T) {
	src := &fakeSource{name: "Slow", jobs: []models.RawJob{recentRaw("Slow", "https://x.test/job/9")}}
	o, st := newTestOrchestrator(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	//an already-cancelled run persists nothing: sources are skipped and the
	//store transaction refuses the dead context
	_, err := o.Run(ctx, Options{Location: "France"})
	assert.Error(t, err)

	jobs, err := st.ListAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
