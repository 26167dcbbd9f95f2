// Package seeder inserts the reference rows a fresh database needs: the
// bootstrap administrator, forum categories and achievement definitions.
// Every seeder is idempotent.
package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/database"
	"unimarket/internal/pkg/logger"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

func Defaults(cfg config.SeedConfig) []Seeder {
	return []Seeder{
		AdminSeeder{Username: cfg.AdminUsername, Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		CategoriesSeeder{},
		AchievementsSeeder{},
	}
}

// Runner executes seeders in order and stops at the first failure.
type Runner struct {
	Seeders []Seeder
	Logger  logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	log := r.Logger
	if log == nil {
		log = logger.Nop()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder finished", logger.String("seeder", s.Name()), logger.Duration("elapsed", time.Since(start)))
	}
	return nil
}

// requireColumns fails when the migrated schema lacks any column a seeder writes.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	have := make(map[string]bool, len(columns))
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		have[c] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range columns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema mismatch: %s is missing %s", table, strings.Join(missing, ", "))
	}
	return nil
}
