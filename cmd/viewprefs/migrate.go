package main

import (
	"github.com/cynergists/go-viewprefs/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and validate the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context(), cfg.Persistence, logging.New(logger), true)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("schema ready", zap.String("server", cfg.Persistence.GetServer()))
		return nil
	},
}
