package dto

import (
	"time"

	"unimarket/internal/domain/org"

	"github.com/google/uuid"
)

type OrganizationRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Type        string `json:"type" validate:"required,oneof=UNIVERSITY ENTERPRISE"`
	Description string `json:"description" validate:"max=5000"`
	Website     string `json:"website" validate:"omitempty,url,max=255"`
}

type OrganizationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewOrganizationResponse(o org.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Type:        o.Type,
		Description: o.Description,
		Website:     o.Website,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
	}
}

func NewOrganizationResponses(os []org.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(os))
	for _, o := range os {
		out = append(out, NewOrganizationResponse(o))
	}
	return out
}

type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Status      string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

type CourseResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Capacity       int       `json:"capacity"`
	Enrolled       int       `json:"enrolled"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewCourseResponse(c org.Course) CourseResponse {
	return CourseResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Title:          c.Title,
		Description:    c.Description,
		Capacity:       c.Capacity,
		Enrolled:       c.Enrolled,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
	}
}

func NewCourseResponses(cs []org.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCourseResponse(c))
	}
	return out
}

// Community entities carry their own json tags and are returned as-is.

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"max=500"`
	SortOrder   int    `json:"sort_order"`
}

type PostRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required,max=50000"`
}

// PostUpdateRequest keeps the current category when category_id is omitted.
type PostUpdateRequest struct {
	CategoryID string `json:"category_id" validate:"omitempty,uuid"`
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required,max=50000"`
}

type CommentRequest struct {
	Content  string  `json:"content" validate:"required,max=10000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type AcceptAnswerRequest struct {
	CommentID string `json:"comment_id" validate:"required,uuid"`
}
