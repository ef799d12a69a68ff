package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/seed"
)

func newImportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import flashcards from a spreadsheet",
		Long: "Import flashcards from an Excel or CSV file. Columns are id, level, topic, " +
			"question, answer, explanation and example; the first row is a header.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sheet, _ := cmd.Flags().GetString("sheet")

			d, err := openDB(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			cfg := seed.DefaultImportConfig()
			cfg.FilePath = args[0]
			cfg.SheetName = sheet

			res, err := seed.ImportCards(ctx, sqlstore.NewCardRepository(d), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d rows: %d created, %d updated, %d skipped\n",
				res.TotalProcessed, res.Created, res.Updated, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().String("sheet", "", "Excel sheet name (default: first sheet)")
	return cmd
}
