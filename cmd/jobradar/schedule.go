package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newScheduleCommand() *cobra.Command {
	var spec string
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scraper on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := cron.New()
			_, err = c.AddFunc(spec, func() {
				if err := executeRun(ctx, d, flags); err != nil {
					d.logger.Errorw("scheduled run failed", "error", err)
				}
			})
			if err != nil {
				return err
			}

			d.logger.Infow("scheduler started", "cron", spec)
			c.Start()

			<-ctx.Done()
			d.logger.Info("shutting down scheduler")

			//let an in-flight run finish before exiting
			stopCtx := c.Stop()
			<-stopCtx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "0 8 * * *", "cron expression for scheduled runs")
	cmd.Flags().StringVar(&flags.country, "country", "", "country portal to search (default from config)")
	cmd.Flags().StringVar(&flags.location, "location", "", "location filter (default from config)")
	cmd.Flags().StringSliceVar(&flags.queries, "queries", nil, "search queries (default from config)")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "send new postings to Telegram")
	cmd.Flags().BoolVar(&flags.skipIndeed, "skip-indeed", false, "skip the browser-driven Indeed source")

	return cmd
}
