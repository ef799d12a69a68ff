// Package cli holds the sqlflash command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/sqlflash/internal/config"
	"github.com/vytor/sqlflash/internal/logger"
)

type options struct {
	cfg config.Config
}

// NewRootCommand builds the command tree. Configuration comes from the
// environment and .env, with the persistent flags taking precedence.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "sqlflash",
		Short:         "SQL flashcards and skill assessment",
		Long:          "SQLFlash serves SQL flashcards with generated answer options and a graded skill assessment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			log := logger.New(
				logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
				logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
				logger.WithColors(true),
				logger.WithOutput(cmd.ErrOrStderr()),
			)
			logger.SetDefault(log)
			cmd.SetContext(logger.NewContext(cmd.Context(), log))
			return nil
		},
	}

	root.PersistentFlags().String("db-driver", "", "Database driver: sqlite3 or postgres (overrides DB_DRIVER)")
	root.PersistentFlags().String("db-dsn", "", "Database DSN (overrides DB_DSN)")
	root.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newImportCommand(opts),
		newGenerateCommand(opts),
		newStudyCommand(opts),
		newAssessCommand(opts),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()

	flags := cmd.Flags()
	if v, _ := flags.GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := flags.GetString("db-dsn"); v != "" {
		cfg.DBDSN = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
