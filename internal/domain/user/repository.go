package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrIdentityNotFound = errors.New("oauth identity not found")
)

type Repository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByAccount(ctx context.Context, account string) (User, error)
	UpdateUser(ctx context.Context, u User) error
	SoftDeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)

	GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	GrantRole(ctx context.Context, userID uuid.UUID, role string) error
}

type IdentityRepository interface {
	ListIdentities(ctx context.Context, userID uuid.UUID) ([]OAuthIdentity, error)
	FindIdentity(ctx context.Context, provider, externalID string) (OAuthIdentity, error)
	LinkIdentity(ctx context.Context, id OAuthIdentity) error
	UnlinkIdentity(ctx context.Context, userID uuid.UUID, provider string) error
}
