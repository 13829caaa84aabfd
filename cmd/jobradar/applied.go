package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAppliedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "applied <id> <true|false>",
		Short: "Mark a posting as applied (or not)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			applied, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid flag %q, want true or false: %w", args[1], err)
			}

			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			found, err := d.store.SetApplied(cmd.Context(), id, applied)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no job with id %d", id)
			}

			fmt.Printf("Job %d: applied=%v\n", id, applied)
			return nil
		},
	}
}
