package app

import (
	"context"
	"database/sql"
	"errors"

	"unimarket/internal/config"
	"unimarket/internal/database"
	"unimarket/internal/database/migration"
	"unimarket/internal/database/seeder"
	"unimarket/internal/pkg/logger"
	"unimarket/migrations"
)

// Migrate applies the embedded schema and returns the migrations it ran.
func Migrate(ctx context.Context, db database.DB, log logger.Logger) ([]migration.Migration, error) {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return nil, err
	}
	return migration.Runner{FS: migrations.FS, Logger: log}.Run(ctx, sqlDB)
}

func MigrationStatus(ctx context.Context, db database.DB) ([]migration.State, error) {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return nil, err
	}
	return migration.Runner{FS: migrations.FS}.Status(ctx, sqlDB)
}

func Seed(ctx context.Context, db database.DB, cfg config.SeedConfig, log logger.Logger) error {
	return seeder.Runner{Seeders: seeder.Defaults(cfg), Logger: log}.Run(ctx, db)
}

func sqlHandle(db database.DB) (*sql.DB, error) {
	if db == nil || db.SQLDB() == nil {
		return nil, errors.New("migrations need a database/sql handle")
	}
	return db.SQLDB(), nil
}
