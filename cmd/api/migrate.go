package main

import (
	"github.com/spf13/cobra"

	"github.com/baharkarakas/approval-backend/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.RunMigrations(cmd.Context(), pool); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
