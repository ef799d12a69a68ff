package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// Open applies anything pending.
			d, err := openDB(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			pending, err := d.Migrate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database schema is up to date (%d pending)\n", len(pending))
			return nil
		},
	}
}
