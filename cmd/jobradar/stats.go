package main

import (
	"os"

	"github.com/spf13/cobra"

	"go-jobradar/internal/export"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counts over the stored postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := d.store.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			export.RenderStats(os.Stdout, stats)
			return nil
		},
	}
}
