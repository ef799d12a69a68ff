package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/seed"
)

func newSeedCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in or a YAML file of flashcards and assessment questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, _ := cmd.Flags().GetString("file")

			var bundle *seed.Bundle
			var err error
			if file != "" {
				bundle, err = seed.LoadFile(file)
			} else {
				bundle, err = seed.Embedded()
			}
			if err != nil {
				return fmt.Errorf("load seed data: %w", err)
			}

			d, err := openDB(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := seed.Apply(ctx, sqlstore.NewCardRepository(d), sqlstore.NewAssessmentRepository(d), bundle)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cards and %d questions\n", res.Cards, res.Questions)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML file to load instead of the built-in data")
	return cmd
}
