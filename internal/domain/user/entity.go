package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser       = "USER"
	RoleMerchant   = "MERCHANT"
	RoleEnterprise = "ENTERPRISE"
	RoleAdmin      = "ADMIN"
)

// ValidRole reports whether r is one of the closed set of platform roles.
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleMerchant, RoleEnterprise, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Roles        []string
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// OAuthIdentity links an external provider account to a local user.
type OAuthIdentity struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Provider   string
	ExternalID string
	Email      string
	CreatedAt  time.Time
}

// Actor is the authenticated caller of a usecase operation.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
