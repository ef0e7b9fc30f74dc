package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/observability"
)

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	cfg     *config.Config
	logger  *zap.Logger
	logPath string
	dataDir string
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:          "ticketgen",
		Short:        "Generate synthetic helpdesk tickets",
		Long:         "ticketgen composes fictitious helpdesk tickets, conversation threads and technician time entries from reference CSV tables.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if app.dataDir != "" {
				cfg.Generator.DataDir = app.dataDir
			}
			logger, path, err := observability.NewFileLogger(cfg.Logger, "app", time.Now())
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			app.cfg, app.logger, app.logPath = cfg, logger, path
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&app.dataDir, "data-dir", "", "reference table directory (overrides DATA_DIR)")

	root.AddCommand(
		newGenerateCmd(app),
		newStatsCmd(app),
		newReviewCmd(app),
		newSyncroCmd(app),
		newProfilesCmd(app),
		newHashKeyCmd(),
	)
	return root
}
