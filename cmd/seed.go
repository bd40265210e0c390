package cmd

import (
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/app/session"
	"github.com/live627/elkarte.net/internal/app/stats"
	"github.com/live627/elkarte.net/internal/db"
	"github.com/live627/elkarte.net/internal/db/seeder"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default boards, members and permissions",
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
		if err := db.Migrate(dbConn, logger); err != nil {
			return err
		}

		sessions := session.NewService(session.NewRepository(dbConn), member.NewRepository(dbConn), redis.NewMemoryCache())
		return seeder.NewSeeder(dbConn, sessions, stats.NewRepository(dbConn), logger).Seed()
	},
}
