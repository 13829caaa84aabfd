// Package pipeline drives one aggregation run: every configured source is
// scraped, the raw batch is filtered and enriched, and the survivors are
// merged into the store in a single transaction.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-jobradar/internal/classify"
	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
	"go-jobradar/internal/store"
)

// Options are the per-run knobs. Empty Queries degrade to the configured
// default query set inside each adapter.
type Options struct {
	Country  string
	Location string
	Queries  []string
	Progress progress.Sink
}

type Orchestrator struct {
	sources []scraper.Source
	engine  *classify.Engine
	store   *store.Store
	logger  *zap.SugaredLogger
	workers int
}

func NewOrchestrator(sources []scraper.Source, engine *classify.Engine, st *store.Store, logger *zap.SugaredLogger, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		sources: sources,
		engine:  engine,
		store:   st,
		logger:  logger,
		workers: workers,
	}
}

// Run executes the full pipeline. Source failures are contained and
// reported; only a store failure aborts the run, because a half-written
// batch would corrupt the dedup invariant.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*models.RunStats, error) {
	sink := opts.Progress
	if sink == nil {
		sink = progress.Discard{}
	}

	sink.Emit("🚀 Starting aggregation run...")

	results, sourceErrors := o.scrapeAll(ctx, opts, sink)

	//aggregate in configured source order so the first-non-empty-wins merge
	//rule stays deterministic regardless of completion order
	var allRaw []models.RawJob
	for _, jobs := range results {
		allRaw = append(allRaw, jobs...)
	}
	sink.Emit(fmt.Sprintf("📊 Raw total: %d postings", len(allRaw)))

	sink.Emit("🔍 Filtering and enriching...")
	enriched := o.engine.Enrich(allRaw, opts.Location, time.Now().UTC())
	filteredOut := len(allRaw) - len(enriched)
	sink.Emit(fmt.Sprintf("✅ Kept: %d postings", len(enriched)))
	sink.Emit(fmt.Sprintf("❌ Filtered out: %d postings", filteredOut))

	sink.Emit("💾 Merging into the store...")
	upsert, err := o.store.BulkUpsert(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("persistence failed, batch rolled back: %w", err)
	}

	sink.Emit(fmt.Sprintf("✅ New postings: %d", upsert.Added))
	sink.Emit(fmt.Sprintf("🔄 Updated postings: %d", upsert.Updated))
	sink.Emit(fmt.Sprintf("⏭️ Duplicates skipped: %d", upsert.Skipped))
	sink.Emit("✨ Run finished!")

	return &models.RunStats{
		TotalScraped: len(allRaw),
		FilteredOut:  filteredOut,
		Added:        upsert.Added,
		Updated:      upsert.Updated,
		Skipped:      upsert.Skipped,
		SourceErrors: sourceErrors,
	}, nil
}

// scrapeAll fans the sources out over a bounded worker pool. Results land in
// per-source slots; a source's records are only visible once its fetch has
// completed, and a failing source contributes an empty slot plus an error
// line on the sink.
func (o *Orchestrator) scrapeAll(ctx context.Context, opts Options, sink progress.Sink) ([][]models.RawJob, map[string]string) {
	req := scraper.Request{
		Country:  opts.Country,
		Location: opts.Location,
		Queries:  opts.Queries,
	}

	results := make([][]models.RawJob, len(o.sources))
	sourceErrors := make(map[string]string)

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.workers)

	for i, src := range o.sources {
		wg.Add(1)
		go func(i int, src scraper.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				mu.Lock()
				sourceErrors[src.Name()] = err.Error()
				mu.Unlock()
				return
			}

			sink.Emit(fmt.Sprintf("📡 Source: %s", src.Name()))
			jobs, err := o.scrapeOne(ctx, src, req, sink)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sourceErrors[src.Name()] = err.Error()
				sink.Emit(fmt.Sprintf("❌ %s: error - %v", src.Name(), err))
				o.logger.Warnw("source failed", "source", src.Name(), "error", err)
				return
			}
			results[i] = jobs
			sink.Emit(fmt.Sprintf("✅ %s: %d postings fetched", src.Name(), len(jobs)))
		}(i, src)
	}

	wg.Wait()
	return results, sourceErrors
}

// scrapeOne isolates a single adapter call, turning panics into contained
// per-source errors so one misbehaving board can't take the run down.
func (o *Orchestrator) scrapeOne(ctx context.Context, src scraper.Source, req scraper.Request, sink progress.Sink) (jobs []models.RawJob, err error) {
	defer func() {
		if r := recover(); r != nil {
			jobs = nil
			err = fmt.Errorf("adapter panicked: %v", r)
		}
	}()
	return src.Scrape(ctx, req, sink)
}
