package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/internal/telemetry"
)

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the curation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			defer a.sync()
			logger := a.logger

			logger.Info("Starting memcurator",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit),
			)

			providers, err := telemetry.Init(a.cfg.Telemetry, Version, logger)
			if err != nil {
				logger.Warn("failed to initialize telemetry", zap.Error(err))
				providers = nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := NewServer(a.cfg, logger, providers, nil).Run(ctx); err != nil {
				if ctx.Err() == nil {
					return err
				}
				logger.Warn("shutdown finished with errors", zap.Error(err))
			}
			logger.Info("memcurator stopped")
			return nil
		},
	}
}

