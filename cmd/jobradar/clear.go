package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored posting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe the database without --yes")
			}

			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All postings deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	return cmd
}
