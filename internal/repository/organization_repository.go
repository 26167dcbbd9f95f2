package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/org"

	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrCourseFull           = errors.New("course is full")
)

type OrganizationRepository interface {
	Create(ctx context.Context, o org.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (org.Organization, error)
	List(ctx context.Context, orgType string, limit, offset int) ([]org.Organization, error)
	Update(ctx context.Context, o org.Organization) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type CourseRepository interface {
	Create(ctx context.Context, c org.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (org.Course, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, publishedOnly bool, limit, offset int) ([]org.Course, error)
	Update(ctx context.Context, c org.Course) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	IsEnrolled(ctx context.Context, courseID, userID uuid.UUID) (bool, error)
	// Enroll inserts the enrollment only while capacity allows it.
	Enroll(ctx context.Context, courseID, userID uuid.UUID) error
	ListEnrolledCourses(ctx context.Context, userID uuid.UUID) ([]org.Course, error)
}

type PostgresOrganizationRepository struct {
	db database.DB
}

func NewPostgresOrganizationRepository(db database.DB) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

const organizationColumns = `id, name, type, description, website, created_by, deleted, created_at, updated_at`

func (r *PostgresOrganizationRepository) Create(ctx context.Context, o org.Organization) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO organizations (id, name, type, description, website, created_by) VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.Name, o.Type, o.Description, o.Website, o.CreatedBy,
	)
	return err
}

func (r *PostgresOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (org.Organization, error) {
	row := r.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1 AND deleted = FALSE`, id)
	o, err := scanOrganization(row)
	if err != nil {
		if isNoRows(err) {
			return org.Organization{}, ErrOrganizationNotFound
		}
		return org.Organization{}, err
	}
	return o, nil
}

func (r *PostgresOrganizationRepository) List(ctx context.Context, orgType string, limit, offset int) ([]org.Organization, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE deleted = FALSE`
	args := []any{}
	if orgType != "" {
		args = append(args, orgType)
		query += ` AND type = $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY name ASC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]org.Organization, 0)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresOrganizationRepository) Update(ctx context.Context, o org.Organization) error {
	n, err := r.db.Exec(ctx,
		`UPDATE organizations SET name = $2, description = $3, website = $4, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		o.ID, o.Name, o.Description, o.Website,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (r *PostgresOrganizationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE organizations SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func scanOrganization(row scanner) (org.Organization, error) {
	var o org.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Type, &o.Description, &o.Website, &o.CreatedBy, &o.Deleted, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

type PostgresCourseRepository struct {
	db database.DB
}

func NewPostgresCourseRepository(db database.DB) *PostgresCourseRepository {
	return &PostgresCourseRepository{db: db}
}

const courseSelect = `SELECT c.id, c.organization_id, c.title, c.description, c.capacity,
	(SELECT COUNT(1) FROM course_enrollments ce WHERE ce.course_id = c.id),
	c.status, c.deleted, c.created_at, c.updated_at
	FROM courses c`

func (r *PostgresCourseRepository) Create(ctx context.Context, c org.Course) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO courses (id, organization_id, title, description, capacity, status) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.OrganizationID, c.Title, c.Description, c.Capacity, c.Status,
	)
	if err != nil && isForeignKeyViolation(err) {
		return ErrOrganizationNotFound
	}
	return err
}

func (r *PostgresCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (org.Course, error) {
	row := r.db.QueryRow(ctx, courseSelect+` WHERE c.id = $1 AND c.deleted = FALSE`, id)
	c, err := scanCourse(row)
	if err != nil {
		if isNoRows(err) {
			return org.Course{}, ErrCourseNotFound
		}
		return org.Course{}, err
	}
	return c, nil
}

func (r *PostgresCourseRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, publishedOnly bool, limit, offset int) ([]org.Course, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	query := courseSelect + ` WHERE c.organization_id = $1 AND c.deleted = FALSE`
	args := []any{orgID}
	if publishedOnly {
		args = append(args, org.CoursePublished)
		query += ` AND c.status = $2`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY c.created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *PostgresCourseRepository) Update(ctx context.Context, c org.Course) error {
	n, err := r.db.Exec(ctx,
		`UPDATE courses SET title = $2, description = $3, capacity = $4, status = $5, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		c.ID, c.Title, c.Description, c.Capacity, c.Status,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE courses SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) IsEnrolled(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE course_id = $1 AND user_id = $2)`,
		courseID, userID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresCourseRepository) Enroll(ctx context.Context, courseID, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var capacity, enrolled int
		row := tx.QueryRow(ctx,
			`SELECT c.capacity, (SELECT COUNT(1) FROM course_enrollments ce WHERE ce.course_id = c.id)
			 FROM courses c WHERE c.id = $1 AND c.deleted = FALSE FOR UPDATE`,
			courseID,
		)
		if err := row.Scan(&capacity, &enrolled); err != nil {
			if isNoRows(err) {
				return ErrCourseNotFound
			}
			return err
		}
		if capacity > 0 && enrolled >= capacity {
			return ErrCourseFull
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO course_enrollments (course_id, user_id) VALUES ($1, $2)`,
			courseID, userID,
		); err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

func (r *PostgresCourseRepository) ListEnrolledCourses(ctx context.Context, userID uuid.UUID) ([]org.Course, error) {
	rows, err := r.db.Query(ctx,
		courseSelect+` JOIN course_enrollments e ON e.course_id = c.id
		 WHERE e.user_id = $1 AND c.deleted = FALSE ORDER BY e.enrolled_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

func collectCourses(rows database.Rows) ([]org.Course, error) {
	out := make([]org.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCourse(row scanner) (org.Course, error) {
	var c org.Course
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Title, &c.Description, &c.Capacity, &c.Enrolled, &c.Status, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
