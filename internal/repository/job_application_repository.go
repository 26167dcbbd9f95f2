package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/job"

	"github.com/google/uuid"
)

var ErrApplicationNotFound = errors.New("application not found")

type JobApplicationRepository interface {
	ExistsActive(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Create(ctx context.Context, a job.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]job.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]job.Application, error)
	// UpdateStatus is a compare-and-set on the current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to job.Status) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresJobApplicationRepository struct {
	db database.DB
}

func NewPostgresJobApplicationRepository(db database.DB) *PostgresJobApplicationRepository {
	return &PostgresJobApplicationRepository{db: db}
}

const applicationSelect = `SELECT a.id, a.job_id, j.title, a.user_id, u.username, a.status, a.cover_letter, a.resume_url,
	a.status_changed_at, a.deleted, a.created_at, a.updated_at
	FROM job_applications a
	JOIN job_posts j ON j.id = a.job_id
	JOIN users u ON u.id = a.user_id`

func (r *PostgresJobApplicationRepository) ExistsActive(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE job_id = $1 AND user_id = $2 AND deleted = FALSE)`,
		jobID, userID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountByUser includes withdrawn applications; achievements are about history.
func (r *PostgresJobApplicationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM job_applications WHERE user_id = $1`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresJobApplicationRepository) Create(ctx context.Context, a job.Application) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_applications (id, job_id, user_id, status, cover_letter, resume_url)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JobID, a.UserID, string(a.Status), a.CoverLetter, a.ResumeURL,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresJobApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Application, error) {
	row := r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1 AND a.deleted = FALSE`, id)
	a, err := scanApplication(row)
	if err != nil {
		if isNoRows(err) {
			return job.Application{}, ErrApplicationNotFound
		}
		return job.Application{}, err
	}
	return a, nil
}

func (r *PostgresJobApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]job.Application, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	rows, err := r.db.Query(ctx,
		applicationSelect+` WHERE a.user_id = $1 AND a.deleted = FALSE ORDER BY a.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *PostgresJobApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]job.Application, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	rows, err := r.db.Query(ctx,
		applicationSelect+` WHERE a.job_id = $1 AND a.deleted = FALSE ORDER BY a.created_at ASC LIMIT $2 OFFSET $3`,
		jobID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *PostgresJobApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to job.Status) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_applications SET status = $3, status_changed_at = now(), updated_at = now()
		 WHERE id = $1 AND status = $2 AND deleted = FALSE`,
		id, string(from), string(to),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *PostgresJobApplicationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE job_applications SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func collectApplications(rows database.Rows) ([]job.Application, error) {
	out := make([]job.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApplication(row scanner) (job.Application, error) {
	var a job.Application
	var status string
	err := row.Scan(
		&a.ID, &a.JobID, &a.JobTitle, &a.UserID, &a.Username, &status, &a.CoverLetter, &a.ResumeURL,
		&a.StatusChangedAt, &a.Deleted, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Status = job.Status(status)
	return a, err
}
