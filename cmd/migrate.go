package cmd

import (
	"github.com/live627/elkarte.net/internal/db"
	"github.com/spf13/cobra"
)

var rollback bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		dbConn, err := db.Connect(cfg, logger)
		if err != nil {
			return err
		}

		if rollback {
			return db.Rollback(dbConn, logger)
		}
		return db.Migrate(dbConn, logger)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&rollback, "down", false, "roll back the latest migration instead")
}
