package dto

import (
	"time"

	"unimarket/internal/domain/enterprise"
	"unimarket/internal/domain/job"
	"unimarket/internal/domain/merchant"

	"github.com/google/uuid"
)

type MerchantRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=32"`
	Active      *bool  `json:"active"`
}

type MerchantResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewMerchantResponse(m merchant.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Address:     m.Address,
		Phone:       m.Phone,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func NewMerchantResponses(ms []merchant.Merchant) []MerchantResponse {
	out := make([]MerchantResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMerchantResponse(m))
	}
	return out
}

type ProductRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Status      string `json:"status" validate:"omitempty,oneof=ON_SALE OFF_SHELF"`
}

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	MerchantID  uuid.UUID `json:"merchant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProductResponse(p merchant.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		MerchantID:  p.MerchantID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProductResponses(ps []merchant.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProductResponse(p))
	}
	return out
}

type EnterpriseRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Industry    string `json:"industry" validate:"max=64"`
}

type EnterpriseResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Industry    string    `json:"industry"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEnterpriseResponse(e enterprise.Enterprise) EnterpriseResponse {
	return EnterpriseResponse{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Industry:    e.Industry,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func NewEnterpriseResponses(es []enterprise.Enterprise) []EnterpriseResponse {
	out := make([]EnterpriseResponse, 0, len(es))
	for _, e := range es {
		out = append(out, NewEnterpriseResponse(e))
	}
	return out
}

type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,oneof=OWNER ADMIN MEMBER"`
}

type MemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=OWNER ADMIN MEMBER"`
}

type MemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewMemberResponse(m enterprise.Member) MemberResponse {
	return MemberResponse{UserID: m.UserID, Username: m.Username, Role: m.Role, JoinedAt: m.JoinedAt}
}

func NewMemberResponses(ms []enterprise.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMemberResponse(m))
	}
	return out
}

type JobPostRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=20000"`
	Location       string `json:"location" validate:"max=120"`
	EmploymentType string `json:"employment_type" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	SalaryMin      *int64 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax      *int64 `json:"salary_max" validate:"omitempty,gte=0"`
}

type JobPostResponse struct {
	ID             uuid.UUID `json:"id"`
	EnterpriseID   uuid.UUID `json:"enterprise_id"`
	EnterpriseName string    `json:"enterprise_name"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	SalaryMin      *int64    `json:"salary_min"`
	SalaryMax      *int64    `json:"salary_max"`
	Status         string    `json:"status"`
	PostedAt       string    `json:"posted_at"`
}

func NewJobPostResponse(p job.Post) JobPostResponse {
	return JobPostResponse{
		ID:             p.ID,
		EnterpriseID:   p.EnterpriseID,
		EnterpriseName: p.EnterpriseName,
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		EmploymentType: p.EmploymentType,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		Status:         p.Status,
		PostedAt:       formatTime(p.CreatedAt),
	}
}

func NewJobPostResponses(ps []job.Post) []JobPostResponse {
	out := make([]JobPostResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewJobPostResponse(p))
	}
	return out
}

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
	ResumeURL   string `json:"resume_url" validate:"omitempty,url,max=500"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ApplicationResponse struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	JobTitle        string    `json:"job_title"`
	UserID          uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	Status          string    `json:"status"`
	CoverLetter     string    `json:"cover_letter"`
	ResumeURL       string    `json:"resume_url"`
	StatusChangedAt string    `json:"status_changed_at"`
	AppliedAt       string    `json:"applied_at"`
}

func NewApplicationResponse(a job.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		JobID:           a.JobID,
		JobTitle:        a.JobTitle,
		UserID:          a.UserID,
		Username:        a.Username,
		Status:          string(a.Status),
		CoverLetter:     a.CoverLetter,
		ResumeURL:       a.ResumeURL,
		StatusChangedAt: formatTime(a.StatusChangedAt),
		AppliedAt:       formatTime(a.CreatedAt),
	}
}

func NewApplicationResponses(as []job.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(as))
	for _, a := range as {
		out = append(out, NewApplicationResponse(a))
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
