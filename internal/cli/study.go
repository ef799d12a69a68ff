package cli

import (
	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/study"
	"github.com/vytor/sqlflash/internal/tui"
)

func newStudyCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Study flashcards in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rawLevel, _ := cmd.Flags().GetString("level")
			user, _ := cmd.Flags().GetString("user")

			level, err := models.ParseLevel(rawLevel)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			var gen study.Generator
			if a.generator != nil {
				gen = a.flashcards
			}
			session := study.NewSession(ctx, a.flashcards, a.options, a.flashcards, gen, study.Config{
				UserID:        user,
				BatchSize:     opts.cfg.LoadMoreBatch,
				GenerateCount: opts.cfg.DefaultGenerateCount,
			})
			defer session.Close()

			if err := session.SelectLevel(ctx, level); err != nil {
				return err
			}
			return tui.Run(ctx, session)
		},
	}
	cmd.Flags().String("level", string(models.LevelBasic), "Level: basic, intermediate, advanced or expert")
	cmd.Flags().String("user", "local", "User id that progress is recorded under")
	return cmd
}
