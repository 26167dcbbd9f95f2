package repository

import (
	"context"

	"unimarket/internal/database"
	"unimarket/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userSelect = `SELECT u.id, u.username, u.email, u.password_hash, u.display_name, u.deleted, u.created_at, u.updated_at,
	COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id`

func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1))`, username)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u user.User) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, display_name) VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.DisplayName,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		for _, role := range u.Roles {
			if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1 AND u.deleted = FALSE GROUP BY u.id`, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetUserByAccount(ctx context.Context, account string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		userSelect+` WHERE (lower(u.username) = lower($1) OR lower(u.email) = lower($1)) AND u.deleted = FALSE GROUP BY u.id`,
		account,
	)
	return scanUser(row)
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, u user.User) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET email = $2, password_hash = $3, display_name = $4, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) SoftDeleteUser(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE users SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]user.User, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	rows, err := r.db.Query(ctx,
		userSelect+` WHERE u.deleted = FALSE GROUP BY u.id ORDER BY u.created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserRepository) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserRepository) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, role := range roles {
			if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role); err != nil {
				if isForeignKeyViolation(err) {
					return user.ErrNotFound
				}
				return err
			}
		}
		return nil
	})
}

func (r *PostgresUserRepository) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	return grantRole(ctx, r.db, userID, role)
}

func grantRole(ctx context.Context, q database.Querier, userID uuid.UUID, role string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT (user_id, role) DO NOTHING`,
		userID, role,
	)
	return err
}

func (r *PostgresUserRepository) ListIdentities(ctx context.Context, userID uuid.UUID) ([]user.OAuthIdentity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, provider, external_id, email, created_at
		 FROM oauth_identities WHERE user_id = $1 ORDER BY provider`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.OAuthIdentity, 0)
	for rows.Next() {
		var it user.OAuthIdentity
		if err := rows.Scan(&it.ID, &it.UserID, &it.Provider, &it.ExternalID, &it.Email, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserRepository) FindIdentity(ctx context.Context, provider, externalID string) (user.OAuthIdentity, error) {
	var it user.OAuthIdentity
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, provider, external_id, email, created_at
		 FROM oauth_identities WHERE provider = $1 AND external_id = $2`,
		provider, externalID,
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.Provider, &it.ExternalID, &it.Email, &it.CreatedAt); err != nil {
		if isNoRows(err) {
			return user.OAuthIdentity{}, user.ErrIdentityNotFound
		}
		return user.OAuthIdentity{}, err
	}
	return it, nil
}

func (r *PostgresUserRepository) LinkIdentity(ctx context.Context, it user.OAuthIdentity) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO oauth_identities (id, user_id, provider, external_id, email) VALUES ($1, $2, $3, $4, $5)`,
		it.ID, it.UserID, it.Provider, it.ExternalID, it.Email,
	)
	if err != nil && IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresUserRepository) UnlinkIdentity(ctx context.Context, userID uuid.UUID, provider string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM oauth_identities WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrIdentityNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (user.User, error) {
	var u user.User
	var roles string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Deleted, &u.CreatedAt, &u.UpdatedAt, &roles); err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Roles = splitCSV(roles)
	return u, nil
}
