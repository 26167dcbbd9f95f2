package enterprise

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

func ValidMemberRole(r string) bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// CanManage reports whether a member role may edit jobs and membership.
func CanManage(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

type Enterprise struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Industry    string
	CreatedBy   uuid.UUID
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Member struct {
	EnterpriseID uuid.UUID
	UserID       uuid.UUID
	Username     string
	Role         string
	JoinedAt     time.Time
}
