package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-jobradar/internal/browser"
	"go-jobradar/internal/classify"
	"go-jobradar/internal/dedup"
	"go-jobradar/internal/models"
	"go-jobradar/internal/notify"
	"go-jobradar/internal/pipeline"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
	"go-jobradar/internal/scraper/hellowork"
	"go-jobradar/internal/scraper/indeed"
	"go-jobradar/internal/scraper/wttj"
)

type runFlags struct {
	country    string
	location   string
	queries    []string
	notify     bool
	skipIndeed bool
}

func newRunCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape all sources once and merge the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeRun(ctx, d, flags)
		},
	}

	cmd.Flags().StringVar(&flags.country, "country", "", "country portal to search (default from config)")
	cmd.Flags().StringVar(&flags.location, "location", "", "location filter (default from config)")
	cmd.Flags().StringSliceVar(&flags.queries, "queries", nil, "search queries (default from config)")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "send new postings to Telegram")
	cmd.Flags().BoolVar(&flags.skipIndeed, "skip-indeed", false, "skip the browser-driven Indeed source")

	return cmd
}

func executeRun(ctx context.Context, d *deps, flags runFlags) error {
	cfg := d.cfg

	country := flags.country
	if country == "" {
		country = cfg.Country
	}
	location := flags.location
	if location == "" {
		location = cfg.Location
	}

	client := scraper.NewClient(cfg)
	engine := classify.NewEngine(cfg)

	sources := []scraper.Source{
		wttj.New(cfg, client),
		hellowork.New(cfg, client),
	}

	if !flags.skipIndeed {
		manager, err := browser.NewManager(cfg.Headless)
		if err != nil {
			//Indeed needs a browser; the HTTP sources still work without one
			d.logger.Warnw("browser unavailable, skipping Indeed", "error", err)
		} else {
			defer manager.Close()
			sources = append(sources, indeed.New(cfg, manager))
		}
	}

	orch := pipeline.NewOrchestrator(sources, engine, d.store, d.logger, cfg.SourceWorkers)

	stats, err := orch.Run(ctx, pipeline.Options{
		Country:  country,
		Location: location,
		Queries:  flags.queries,
		Progress: progress.WriterSink{W: os.Stdout},
	})
	if err != nil {
		return err
	}

	d.logger.Infow("run complete",
		"scraped", stats.TotalScraped,
		"filtered_out", stats.FilteredOut,
		"added", stats.Added,
		"updated", stats.Updated,
		"source_errors", len(stats.SourceErrors),
	)

	if flags.notify {
		notifyNewJobs(ctx, d, stats)
	}
	return nil
}

// notifyNewJobs pushes postings we haven't pinged about yet. Notification
// problems are logged, never returned; a failed ping must not fail the run.
func notifyNewJobs(ctx context.Context, d *deps, stats *models.RunStats) {
	cfg := d.cfg
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		d.logger.Warn("notifications requested but Telegram is not configured")
		return
	}

	bot, err := notify.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		d.logger.Warnw("failed to connect to Telegram", "error", err)
		return
	}

	cache := dedup.NewSeenCache(cfg.CachePath)

	jobs, err := d.store.ListAll(ctx, cfg.MaxTableRows)
	if err != nil {
		d.logger.Warnw("failed to list jobs for notification", "error", err)
		return
	}

	var sent []string
	for _, job := range jobs {
		if job.URL == "" || cache.IsSeen(job.URL) {
			continue
		}
		if err := bot.SendJob(job); err != nil {
			d.logger.Warnw("failed to send job notification", "url", job.URL, "error", err)
			continue
		}
		sent = append(sent, job.URL)
	}
	cache.Add(sent)

	if err := bot.SendSummary(*stats); err != nil {
		d.logger.Warnw("failed to send run summary", "error", err)
	}
	d.logger.Infow("notifications sent", "count", len(sent))
}
