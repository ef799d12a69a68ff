package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func newAssessCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Skill assessment tools",
	}

	complete := &cobra.Command{
		Use:   "complete",
		Short: "Grade and complete an assessment, printing the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, _ := cmd.Flags().GetString("user")
			id, _ := cmd.Flags().GetString("assessment")
			timeSpent, _ := cmd.Flags().GetInt("time-spent")
			if user == "" || id == "" {
				return errors.New("--user and --assessment are required")
			}

			a, err := newApp(ctx, opts.cfg, true)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			result, err := a.assessment.Complete(ctx, user, id, timeSpent)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	complete.Flags().String("user", "", "User id that owns the assessment")
	complete.Flags().String("assessment", "", "Assessment id")
	complete.Flags().Int("time-spent", 0, "Seconds spent on the assessment")

	cmd.AddCommand(complete)
	return cmd
}
