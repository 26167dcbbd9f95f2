package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/achievement"

	"github.com/google/uuid"
)

var ErrAchievementNotFound = errors.New("achievement not found")

type AchievementRepository interface {
	Create(ctx context.Context, a achievement.Achievement) error
	GetByCode(ctx context.Context, code string) (achievement.Achievement, error)
	List(ctx context.Context) ([]achievement.Achievement, error)
	// Award is idempotent; it reports whether a new row was written.
	Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]achievement.UserAchievement, error)
}

type PostgresAchievementRepository struct {
	db database.DB
}

func NewPostgresAchievementRepository(db database.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) Create(ctx context.Context, a achievement.Achievement) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO achievements (id, code, name, description, points) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Code, a.Name, a.Description, a.Points,
	)
	if err != nil && IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresAchievementRepository) GetByCode(ctx context.Context, code string) (achievement.Achievement, error) {
	var a achievement.Achievement
	row := r.db.QueryRow(ctx,
		`SELECT id, code, name, description, points, created_at FROM achievements WHERE code = $1`,
		code,
	)
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Points, &a.CreatedAt); err != nil {
		if isNoRows(err) {
			return achievement.Achievement{}, ErrAchievementNotFound
		}
		return achievement.Achievement{}, err
	}
	return a, nil
}

func (r *PostgresAchievementRepository) List(ctx context.Context) ([]achievement.Achievement, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, description, points, created_at FROM achievements ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]achievement.Achievement, 0)
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Points, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAchievementRepository) Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx,
		`INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresAchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]achievement.UserAchievement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.code, a.name, a.description, a.points, a.created_at, ua.user_id, ua.awarded_at
		 FROM user_achievements ua
		 JOIN achievements a ON a.id = ua.achievement_id
		 WHERE ua.user_id = $1
		 ORDER BY ua.awarded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]achievement.UserAchievement, 0)
	for rows.Next() {
		var ua achievement.UserAchievement
		if err := rows.Scan(&ua.ID, &ua.Code, &ua.Name, &ua.Description, &ua.Points, &ua.CreatedAt, &ua.UserID, &ua.AwardedAt); err != nil {
			return nil, err
		}
		out = append(out, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
