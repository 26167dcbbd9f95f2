package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/job"

	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

type JobPostRepository interface {
	Create(ctx context.Context, p job.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Post, error)
	List(ctx context.Context, f job.ListFilter) ([]job.Post, error)
	ListByEnterprise(ctx context.Context, enterpriseID uuid.UUID, limit, offset int) ([]job.Post, error)
	ListOpenIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, p job.Post) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresJobPostRepository struct {
	db database.DB
}

func NewPostgresJobPostRepository(db database.DB) *PostgresJobPostRepository {
	return &PostgresJobPostRepository{db: db}
}

const jobPostSelect = `SELECT j.id, j.enterprise_id, e.name, j.posted_by, j.title, j.description, j.location,
	j.employment_type, j.salary_min, j.salary_max, j.status, j.deleted, j.created_at, j.updated_at
	FROM job_posts j
	JOIN enterprises e ON e.id = j.enterprise_id`

func (r *PostgresJobPostRepository) Create(ctx context.Context, p job.Post) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_posts (id, enterprise_id, posted_by, title, description, location, employment_type, salary_min, salary_max, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.EnterpriseID, p.PostedBy, p.Title, p.Description, p.Location, p.EmploymentType, p.SalaryMin, p.SalaryMax, p.Status,
	)
	if err != nil && isForeignKeyViolation(err) {
		return ErrEnterpriseNotFound
	}
	return err
}

func (r *PostgresJobPostRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Post, error) {
	row := r.db.QueryRow(ctx, jobPostSelect+` WHERE j.id = $1 AND j.deleted = FALSE`, id)
	p, err := scanJobPost(row)
	if err != nil {
		if isNoRows(err) {
			return job.Post{}, ErrJobNotFound
		}
		return job.Post{}, err
	}
	return p, nil
}

// List returns open, non-deleted posts matching the optional keyword and location.
func (r *PostgresJobPostRepository) List(ctx context.Context, f job.ListFilter) ([]job.Post, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 20, 50)

	query := jobPostSelect + ` WHERE j.deleted = FALSE AND e.deleted = FALSE AND j.status = $1`
	args := []any{job.PostOpen}
	if p := likePattern(f.Keyword); p != "" {
		args = append(args, p)
		n := itoa(len(args))
		query += ` AND (j.title ILIKE $` + n + ` OR j.description ILIKE $` + n + ` OR e.name ILIKE $` + n + `)`
	}
	if p := likePattern(f.Location); p != "" {
		args = append(args, p)
		query += ` AND j.location ILIKE $` + itoa(len(args))
	}
	args = append(args, limit, offset)
	query += ` ORDER BY j.created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobPosts(rows)
}

func (r *PostgresJobPostRepository) ListByEnterprise(ctx context.Context, enterpriseID uuid.UUID, limit, offset int) ([]job.Post, error) {
	limit, offset = clampPage(limit, offset, 20, 50)

	rows, err := r.db.Query(ctx,
		jobPostSelect+` WHERE j.enterprise_id = $1 AND j.deleted = FALSE ORDER BY j.created_at DESC LIMIT $2 OFFSET $3`,
		enterpriseID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobPosts(rows)
}

func (r *PostgresJobPostRepository) ListOpenIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM job_posts WHERE deleted = FALSE AND status = $1`, job.PostOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobPostRepository) Update(ctx context.Context, p job.Post) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_posts SET title = $2, description = $3, location = $4, employment_type = $5,
		 salary_min = $6, salary_max = $7, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		p.ID, p.Title, p.Description, p.Location, p.EmploymentType, p.SalaryMin, p.SalaryMax,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresJobPostRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	n, err := r.db.Exec(ctx, `UPDATE job_posts SET status = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresJobPostRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE job_posts SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func collectJobPosts(rows database.Rows) ([]job.Post, error) {
	out := make([]job.Post, 0)
	for rows.Next() {
		p, err := scanJobPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJobPost(row scanner) (job.Post, error) {
	var p job.Post
	err := row.Scan(
		&p.ID, &p.EnterpriseID, &p.EnterpriseName, &p.PostedBy, &p.Title, &p.Description, &p.Location,
		&p.EmploymentType, &p.SalaryMin, &p.SalaryMax, &p.Status, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
