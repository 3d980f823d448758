// Command migrate applies the embedded schema migrations.
//
//	go run ./cmd/migrate [up|down|status]
package main

import (
	"context"
	"log/slog"
	"os"

	"loyalty/config"
	"loyalty/internal/errors"
	logs "loyalty/internal/infra/log"
	"loyalty/internal/infra/persistence/postgres"

	pgLib "github.com/slighter12/go-lib/database/postgres"
)

func main() {
	command := postgres.MigrationUp
	if len(os.Args) > 1 {
		command = postgres.MigrationCommand(os.Args[1])
	}

	if err := run(context.Background(), command); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command postgres.MigrationCommand) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "create logger")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "connect to PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get PostgreSQL sql.DB")
	}
	defer sqlDB.Close()

	return postgres.RunMigrations(ctx, db, command, logger)
}
