// Command jobradar aggregates fresh data-role postings from several boards
// into one deduplicated local database.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-jobradar/internal/config"
	"go-jobradar/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Aggregate and track data-role job postings",
	Long: `jobradar scrapes several job boards for recent data-role postings,
filters and classifies them, and merges everything into a local database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default configs/config.yaml)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newJobsCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newAppliedCommand())
	rootCmd.AddCommand(newClearCommand())
	rootCmd.AddCommand(newScheduleCommand())
}

// deps bundles what every subcommand needs.
type deps struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	store  *store.Store
}

func buildDeps() (*deps, func(), error) {
	cfg := config.Load(configPath)

	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	logger := zl.Sugar()

	st, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		zl.Sync()
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	cleanup := func() {
		st.Close()
		zl.Sync()
	}
	return &deps{cfg: cfg, logger: logger, store: st}, cleanup, nil
}
