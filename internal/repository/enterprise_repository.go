package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/enterprise"
	"unimarket/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrEnterpriseNotFound = errors.New("enterprise not found")
	ErrMemberNotFound     = errors.New("enterprise member not found")
)

type EnterpriseRepository interface {
	CreateWithOwner(ctx context.Context, e enterprise.Enterprise) error
	GetByID(ctx context.Context, id uuid.UUID) (enterprise.Enterprise, error)
	List(ctx context.Context, limit, offset int) ([]enterprise.Enterprise, error)
	Update(ctx context.Context, e enterprise.Enterprise) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	GetMember(ctx context.Context, enterpriseID, userID uuid.UUID) (enterprise.Member, error)
	ListMembers(ctx context.Context, enterpriseID uuid.UUID) ([]enterprise.Member, error)
	AddMember(ctx context.Context, m enterprise.Member) error
	UpdateMemberRole(ctx context.Context, enterpriseID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, enterpriseID, userID uuid.UUID) error
	CountOwners(ctx context.Context, enterpriseID uuid.UUID) (int, error)
}

type PostgresEnterpriseRepository struct {
	db database.DB
}

func NewPostgresEnterpriseRepository(db database.DB) *PostgresEnterpriseRepository {
	return &PostgresEnterpriseRepository{db: db}
}

const enterpriseColumns = `id, name, slug, description, industry, created_by, deleted, created_at, updated_at`

// CreateWithOwner inserts the enterprise, its first OWNER membership and the
// creator's ENTERPRISE role in one transaction.
func (r *PostgresEnterpriseRepository) CreateWithOwner(ctx context.Context, e enterprise.Enterprise) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO enterprises (id, name, slug, description, industry, created_by) VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Name, e.Slug, e.Description, e.Industry, e.CreatedBy,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO enterprise_members (enterprise_id, user_id, role) VALUES ($1, $2, $3)`,
			e.ID, e.CreatedBy, enterprise.RoleOwner,
		); err != nil {
			return err
		}
		return grantRole(ctx, tx, e.CreatedBy, user.RoleEnterprise)
	})
}

func (r *PostgresEnterpriseRepository) GetByID(ctx context.Context, id uuid.UUID) (enterprise.Enterprise, error) {
	row := r.db.QueryRow(ctx, `SELECT `+enterpriseColumns+` FROM enterprises WHERE id = $1 AND deleted = FALSE`, id)
	e, err := scanEnterprise(row)
	if err != nil {
		if isNoRows(err) {
			return enterprise.Enterprise{}, ErrEnterpriseNotFound
		}
		return enterprise.Enterprise{}, err
	}
	return e, nil
}

func (r *PostgresEnterpriseRepository) List(ctx context.Context, limit, offset int) ([]enterprise.Enterprise, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	rows, err := r.db.Query(ctx,
		`SELECT `+enterpriseColumns+` FROM enterprises WHERE deleted = FALSE ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]enterprise.Enterprise, 0)
	for rows.Next() {
		e, err := scanEnterprise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresEnterpriseRepository) Update(ctx context.Context, e enterprise.Enterprise) error {
	n, err := r.db.Exec(ctx,
		`UPDATE enterprises SET name = $2, description = $3, industry = $4, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		e.ID, e.Name, e.Description, e.Industry,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnterpriseNotFound
	}
	return nil
}

func (r *PostgresEnterpriseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE enterprises SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnterpriseNotFound
	}
	return nil
}

func (r *PostgresEnterpriseRepository) GetMember(ctx context.Context, enterpriseID, userID uuid.UUID) (enterprise.Member, error) {
	var m enterprise.Member
	row := r.db.QueryRow(ctx,
		`SELECT m.enterprise_id, m.user_id, u.username, m.role, m.joined_at
		 FROM enterprise_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.enterprise_id = $1 AND m.user_id = $2`,
		enterpriseID, userID,
	)
	if err := row.Scan(&m.EnterpriseID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
		if isNoRows(err) {
			return enterprise.Member{}, ErrMemberNotFound
		}
		return enterprise.Member{}, err
	}
	return m, nil
}

func (r *PostgresEnterpriseRepository) ListMembers(ctx context.Context, enterpriseID uuid.UUID) ([]enterprise.Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.enterprise_id, m.user_id, u.username, m.role, m.joined_at
		 FROM enterprise_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.enterprise_id = $1
		 ORDER BY m.joined_at ASC`,
		enterpriseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]enterprise.Member, 0)
	for rows.Next() {
		var m enterprise.Member
		if err := rows.Scan(&m.EnterpriseID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember also grants the ENTERPRISE role so the new member passes role checks.
func (r *PostgresEnterpriseRepository) AddMember(ctx context.Context, m enterprise.Member) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO enterprise_members (enterprise_id, user_id, role) VALUES ($1, $2, $3)`,
			m.EnterpriseID, m.UserID, m.Role,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			if isForeignKeyViolation(err) {
				return user.ErrNotFound
			}
			return err
		}
		return grantRole(ctx, tx, m.UserID, user.RoleEnterprise)
	})
}

func (r *PostgresEnterpriseRepository) UpdateMemberRole(ctx context.Context, enterpriseID, userID uuid.UUID, role string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE enterprise_members SET role = $3 WHERE enterprise_id = $1 AND user_id = $2`,
		enterpriseID, userID, role,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresEnterpriseRepository) RemoveMember(ctx context.Context, enterpriseID, userID uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM enterprise_members WHERE enterprise_id = $1 AND user_id = $2`, enterpriseID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresEnterpriseRepository) CountOwners(ctx context.Context, enterpriseID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM enterprise_members WHERE enterprise_id = $1 AND role = $2`,
		enterpriseID, enterprise.RoleOwner,
	)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanEnterprise(row scanner) (enterprise.Enterprise, error) {
	var e enterprise.Enterprise
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Industry, &e.CreatedBy, &e.Deleted, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
