package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/models"
)

func newGenerateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate new flashcards with the configured LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rawLevel, _ := cmd.Flags().GetString("level")
			count, _ := cmd.Flags().GetInt("count")

			level, err := models.ParseLevel(rawLevel)
			if err != nil {
				return err
			}
			if count <= 0 {
				count = opts.cfg.DefaultGenerateCount
			}

			a, err := newApp(ctx, opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			cards, err := a.flashcards.GenerateCards(ctx, level, count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "generated %d %s cards\n", len(cards), level)
			for _, c := range cards {
				fmt.Fprintf(out, "  %s  %s\n", c.ID, c.Question)
			}
			return nil
		},
	}
	cmd.Flags().String("level", string(models.LevelBasic), "Level: basic, intermediate, advanced or expert")
	cmd.Flags().Int("count", 0, "Number of cards (default DEFAULT_GENERATE_COUNT)")
	return cmd
}
