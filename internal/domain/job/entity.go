package job

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostOpen   = "OPEN"
	PostClosed = "CLOSED"
)

type Post struct {
	ID             uuid.UUID
	EnterpriseID   uuid.UUID
	EnterpriseName string
	PostedBy       uuid.UUID
	Title          string
	Description    string
	Location       string
	EmploymentType string
	SalaryMin      *int64
	SalaryMax      *int64
	Status         string
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p Post) IsOpen() bool {
	return p.Status == PostOpen && !p.Deleted
}

type Application struct {
	ID              uuid.UUID
	JobID           uuid.UUID
	JobTitle        string
	UserID          uuid.UUID
	Username        string
	Status          Status
	CoverLetter     string
	ResumeURL       string
	StatusChangedAt time.Time
	Deleted         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ListFilter struct {
	Keyword  string
	Location string
	Limit    int
	Offset   int
}
