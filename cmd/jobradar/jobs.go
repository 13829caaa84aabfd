package main

import (
	"os"

	"github.com/spf13/cobra"

	"go-jobradar/internal/export"
)

func newJobsCommand() *cobra.Command {
	var limit int
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List stored postings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			if limit <= 0 {
				limit = d.cfg.MaxTableRows
			}

			jobs, err := d.store.ListAll(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asCSV {
				return export.RenderCSV(os.Stdout, jobs)
			}
			export.RenderTable(os.Stdout, jobs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to show (default from config)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")

	return cmd
}
