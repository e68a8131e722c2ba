package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/approval-backend/internal/config"
	"github.com/baharkarakas/approval-backend/internal/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "approval-api",
		Short:         "Maker-checker approval service for banks, routes and users",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd())
	return cmd
}

// setup loads config and installs the process logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	return cfg, log, nil
}
