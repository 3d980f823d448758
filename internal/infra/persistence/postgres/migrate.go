package postgres

import (
	"context"
	"embed"
	"log/slog"

	"loyalty/internal/errors"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// MigrationCommand is a goose command supported by RunMigrations.
type MigrationCommand string

const (
	MigrationUp     MigrationCommand = "up"
	MigrationDown   MigrationCommand = "down"
	MigrationStatus MigrationCommand = "status"
)

// RunMigrations applies the embedded schema migrations using goose.
func RunMigrations(ctx context.Context, db *gorm.DB, command MigrationCommand, logger *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	logger.Info("Running database migrations", slog.String("command", string(command)))

	switch command {
	case MigrationUp:
		err = goose.UpContext(ctx, sqlDB, migrationsDir)
	case MigrationDown:
		err = goose.DownContext(ctx, sqlDB, migrationsDir)
	case MigrationStatus:
		err = goose.StatusContext(ctx, sqlDB, migrationsDir)
	default:
		return errors.Errorf("unknown migration command: %s", command)
	}
	if err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}
	logger.Info("Database migrations finished", slog.Int64("version", version))

	return nil
}
