package seeder

import (
	"context"
	"fmt"

	"unimarket/internal/database"
	"unimarket/internal/domain/achievement"

	"github.com/google/uuid"
)

type CategoriesSeeder struct{}

func (CategoriesSeeder) Name() string { return "community_categories" }

func (CategoriesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "community_categories", "id", "name", "description", "sort_order", "deleted"); err != nil {
		return err
	}

	items := []struct {
		Name        string
		Description string
	}{
		{Name: "General", Description: "Anything about campus life and work"},
		{Name: "Careers", Description: "Job hunting, interviews and internships"},
		{Name: "Courses", Description: "Course reviews and study groups"},
		{Name: "Marketplace", Description: "Questions about merchants and products"},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for i, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO community_categories (id, name, description, sort_order)
				 SELECT $1, $2, $3, $4
				 WHERE NOT EXISTS (SELECT 1 FROM community_categories WHERE name = $2 AND deleted = FALSE)`,
				uuid.New(), it.Name, it.Description, i,
			); err != nil {
				return fmt.Errorf("insert category %s: %w", it.Name, err)
			}
		}
		return nil
	})
}

type AchievementsSeeder struct{}

func (AchievementsSeeder) Name() string { return "achievements" }

func (AchievementsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "achievements", "id", "code", "name", "description", "points"); err != nil {
		return err
	}

	items := []achievement.Achievement{
		{Code: achievement.CodeFirstApplication, Name: "First application", Description: "Applied to a job for the first time", Points: 10},
		{Code: achievement.CodeFirstAnswerAccepted, Name: "Helpful answer", Description: "An answer was accepted for the first time", Points: 20},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO achievements (id, code, name, description, points)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (code) DO NOTHING`,
				uuid.New(), it.Code, it.Name, it.Description, it.Points,
			); err != nil {
				return fmt.Errorf("insert achievement %s: %w", it.Code, err)
			}
		}
		return nil
	})
}
