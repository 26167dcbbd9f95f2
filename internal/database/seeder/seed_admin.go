package seeder

import (
	"context"
	"fmt"
	"strings"

	"unimarket/internal/database"
	"unimarket/internal/domain/user"
	ucauth "unimarket/internal/usecase/auth"

	"github.com/google/uuid"
)

// AdminSeeder creates the first administrator. It does nothing without a
// password and never touches an existing account's password.
type AdminSeeder struct {
	Username string
	Email    string
	Password string
}

func (AdminSeeder) Name() string { return "admin_user" }

func (s AdminSeeder) Run(ctx context.Context, db database.DB) error {
	if strings.TrimSpace(s.Password) == "" {
		return nil
	}
	if err := requireColumns(ctx, db, "users", "id", "username", "email", "password_hash", "display_name"); err != nil {
		return err
	}

	username := strings.TrimSpace(s.Username)
	if username == "" {
		username = "admin"
	}
	email := ucauth.NormalizeEmail(s.Email)
	if email == "" {
		email = username + "@localhost"
	}
	hash, err := ucauth.HashPassword(s.Password)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx,
			`INSERT INTO users (id, username, email, password_hash, display_name)
			 VALUES ($1, $2, $3, $4, $2)
			 ON CONFLICT DO NOTHING
			 RETURNING id`,
			uuid.New(), username, email, hash,
		).Scan(&id)
		if err != nil {
			// Already present; look it up so roles are still granted.
			if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE lower(username) = lower($1)`, username).Scan(&id); err != nil {
				return fmt.Errorf("find admin user: %w", err)
			}
		}

		for _, role := range []string{user.RoleUser, user.RoleAdmin} {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, role,
			); err != nil {
				return fmt.Errorf("grant %s: %w", role, err)
			}
		}
		return nil
	})
}
