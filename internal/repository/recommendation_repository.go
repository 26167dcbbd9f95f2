package repository

import (
	"context"
	"encoding/json"
	"time"

	"unimarket/internal/database"
	"unimarket/internal/domain/recommendation"

	"github.com/google/uuid"
)

type RecommendationRepository interface {
	UpsertUserFeature(ctx context.Context, f recommendation.Feature) error
	UpsertJobFeature(ctx context.Context, f recommendation.Feature) error
	ListUserFeatures(ctx context.Context) ([]recommendation.Feature, error)
	// ListOpenJobFeatures returns features of open, non-deleted jobs only.
	ListOpenJobFeatures(ctx context.Context) ([]recommendation.Feature, error)

	// ReplaceAll swaps every stored recommendation for the given pairs in one transaction.
	ReplaceAll(ctx context.Context, byUser, byJob []recommendation.Pair, computedAt time.Time) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.JobRecommendation, error)
	ListForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]recommendation.TalentRecommendation, error)
}

type PostgresRecommendationRepository struct {
	db database.DB
}

func NewPostgresRecommendationRepository(db database.DB) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

func (r *PostgresRecommendationRepository) UpsertUserFeature(ctx context.Context, f recommendation.Feature) error {
	vec, tags, err := encodeFeature(f)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO user_features (user_id, vector, tags, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE SET vector = EXCLUDED.vector, tags = EXCLUDED.tags, updated_at = now()`,
		f.OwnerID, vec, tags,
	)
	return err
}

func (r *PostgresRecommendationRepository) UpsertJobFeature(ctx context.Context, f recommendation.Feature) error {
	vec, tags, err := encodeFeature(f)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO job_features (job_id, vector, tags, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (job_id) DO UPDATE SET vector = EXCLUDED.vector, tags = EXCLUDED.tags, updated_at = now()`,
		f.OwnerID, vec, tags,
	)
	if err != nil && isForeignKeyViolation(err) {
		return ErrJobNotFound
	}
	return err
}

func (r *PostgresRecommendationRepository) ListUserFeatures(ctx context.Context) ([]recommendation.Feature, error) {
	return r.listFeatures(ctx,
		`SELECT f.user_id, f.vector::text, f.tags::text, f.updated_at
		 FROM user_features f
		 JOIN users u ON u.id = f.user_id
		 WHERE u.deleted = FALSE`,
	)
}

func (r *PostgresRecommendationRepository) ListOpenJobFeatures(ctx context.Context) ([]recommendation.Feature, error) {
	return r.listFeatures(ctx,
		`SELECT f.job_id, f.vector::text, f.tags::text, f.updated_at
		 FROM job_features f
		 JOIN job_posts j ON j.id = f.job_id
		 WHERE j.deleted = FALSE AND j.status = 'OPEN'`,
	)
}

func (r *PostgresRecommendationRepository) listFeatures(ctx context.Context, query string) ([]recommendation.Feature, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommendation.Feature, 0)
	for rows.Next() {
		var f recommendation.Feature
		var vec, tags string
		if err := rows.Scan(&f.OwnerID, &vec, &tags, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vec), &f.Vector); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRecommendationRepository) ReplaceAll(ctx context.Context, byUser, byJob []recommendation.Pair, computedAt time.Time) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM job_recommendations`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM talent_recommendations`); err != nil {
			return err
		}
		for _, p := range byUser {
			tags, err := json.Marshal(nonNilTags(p.MatchedTags))
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_recommendations (user_id, job_id, score, matched_tags, computed_at) VALUES ($1, $2, $3, $4, $5)`,
				p.UserID, p.JobID, p.Score, string(tags), computedAt,
			); err != nil {
				return err
			}
		}
		for _, p := range byJob {
			tags, err := json.Marshal(nonNilTags(p.MatchedTags))
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO talent_recommendations (job_id, user_id, score, matched_tags, computed_at) VALUES ($1, $2, $3, $4, $5)`,
				p.JobID, p.UserID, p.Score, string(tags), computedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRecommendationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.JobRecommendation, error) {
	limit, _ = clampPage(limit, 0, 20, 100)

	rows, err := r.db.Query(ctx,
		`SELECT r.user_id, r.job_id, j.title, e.name, j.location, r.score, r.matched_tags::text, r.computed_at
		 FROM job_recommendations r
		 JOIN job_posts j ON j.id = r.job_id
		 JOIN enterprises e ON e.id = j.enterprise_id
		 WHERE r.user_id = $1 AND j.deleted = FALSE AND j.status = 'OPEN'
		 ORDER BY r.score DESC, j.created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommendation.JobRecommendation, 0)
	for rows.Next() {
		var rec recommendation.JobRecommendation
		var tags string
		if err := rows.Scan(&rec.UserID, &rec.JobID, &rec.JobTitle, &rec.EnterpriseName, &rec.Location, &rec.Score, &tags, &rec.ComputedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &rec.MatchedTags); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRecommendationRepository) ListForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]recommendation.TalentRecommendation, error) {
	limit, _ = clampPage(limit, 0, 20, 100)

	rows, err := r.db.Query(ctx,
		`SELECT r.job_id, r.user_id, u.username, u.display_name, r.score, r.matched_tags::text, r.computed_at
		 FROM talent_recommendations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.job_id = $1 AND u.deleted = FALSE
		 ORDER BY r.score DESC, u.username ASC
		 LIMIT $2`,
		jobID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommendation.TalentRecommendation, 0)
	for rows.Next() {
		var rec recommendation.TalentRecommendation
		var tags string
		if err := rows.Scan(&rec.JobID, &rec.UserID, &rec.Username, &rec.DisplayName, &rec.Score, &tags, &rec.ComputedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &rec.MatchedTags); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeFeature(f recommendation.Feature) (string, string, error) {
	vector := f.Vector
	if vector == nil {
		vector = []float64{}
	}
	vec, err := json.Marshal(vector)
	if err != nil {
		return "", "", err
	}
	tags, err := json.Marshal(nonNilTags(f.Tags))
	if err != nil {
		return "", "", err
	}
	return string(vec), string(tags), nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
