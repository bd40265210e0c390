package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/modlog"
	"github.com/live627/elkarte.net/internal/app/notification"
	"github.com/live627/elkarte.net/internal/app/permission"
	"github.com/live627/elkarte.net/internal/app/poll"
	"github.com/live627/elkarte.net/internal/app/search"
	"github.com/live627/elkarte.net/internal/app/session"
	"github.com/live627/elkarte.net/internal/app/stats"
	"github.com/live627/elkarte.net/internal/app/topic"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table of the forum schema.
func Models() []interface{} {
	return []interface{}{
		&board.Category{},
		&board.Board{},
		&member.Member{},
		&session.Session{},
		&permission.BoardPermission{},
		&topic.Topic{},
		&message.Message{},
		&poll.Poll{},
		&poll.PollChoice{},
		&poll.LogPoll{},
		&notification.LogNotify{},
		&search.SubjectWord{},
		&search.Message{},
		&stats.Setting{},
		&modlog.Action{},
		&errorlog.Record{},
	}
}

// Migrate brings the schema up to date. PostgreSQL runs the versioned SQL
// migrations; SQLite is auto-migrated from the models.
func Migrate(dbConn *gorm.DB, logger *zap.Logger) error {
	if dbConn.Dialector.Name() != "postgres" {
		if err := dbConn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		logger.Info("Database schema auto-migrated", zap.String("dialect", dbConn.Dialector.Name()))
		return nil
	}

	m, err := newMigrator(dbConn)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Database migration was run successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Rollback reverts the last applied migration.
func Rollback(dbConn *gorm.DB, logger *zap.Logger) error {
	if dbConn.Dialector.Name() != "postgres" {
		return fmt.Errorf("rollback is only supported on postgres")
	}

	m, err := newMigrator(dbConn)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	logger.Info("Rolled back one migration")
	return nil
}

func newMigrator(dbConn *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to get migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "elkarte", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
