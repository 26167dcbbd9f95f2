package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/achievement"
	"unimarket/internal/domain/job"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/text"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound          = domain.NotFound("Job not found")
	ErrApplicationNotFound  = domain.NotFound("Application not found")
	ErrJobNotOpen           = domain.Rule("Job is not open")
	ErrAlreadyApplied       = domain.Rule("Already applied")
	ErrInvalidSalaryRange   = domain.Rule("Minimum salary must not exceed maximum salary")
	ErrInvalidStatus        = domain.Rule("Unknown application status")
	ErrTransitionNotAllowed = domain.Rule("Application status transition not allowed")
	ErrCannotWithdraw       = domain.Rule("Application can no longer be withdrawn")
	ErrStatusChanged        = domain.Conflict("Application status changed, reload and retry")
	ErrNotApplicant         = domain.Forbidden("Only the applicant can do this")
)

// EnterpriseAccess checks a caller's standing inside an enterprise.
type EnterpriseAccess interface {
	RequireManager(ctx context.Context, actor user.Actor, enterpriseID uuid.UUID) error
	RequireMember(ctx context.Context, actor user.Actor, enterpriseID uuid.UUID) error
}

type Awarder interface {
	AwardQuietly(ctx context.Context, userID uuid.UUID, code string)
}

type PostInput struct {
	Title          string
	Description    string
	Location       string
	EmploymentType string
	SalaryMin      *int64
	SalaryMax      *int64
}

type ApplyInput struct {
	CoverLetter string
	ResumeURL   string
}

type Service struct {
	posts        repository.JobPostRepository
	applications repository.JobApplicationRepository
	access       EnterpriseAccess
	awards       Awarder
}

func NewService(posts repository.JobPostRepository, applications repository.JobApplicationRepository, access EnterpriseAccess, awards Awarder) *Service {
	return &Service{posts: posts, applications: applications, access: access, awards: awards}
}

func (s *Service) List(ctx context.Context, f job.ListFilter) ([]job.Post, error) {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Location = strings.TrimSpace(f.Location)
	out, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (job.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Post{}, ErrJobNotFound
		}
		return job.Post{}, fmt.Errorf("load job: %w", err)
	}
	return p, nil
}

func (s *Service) ListByEnterprise(ctx context.Context, enterpriseID uuid.UUID, limit, offset int) ([]job.Post, error) {
	out, err := s.posts.ListByEnterprise(ctx, enterpriseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list enterprise jobs: %w", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor user.Actor, enterpriseID uuid.UUID, in PostInput) (job.Post, error) {
	if err := s.access.RequireManager(ctx, actor, enterpriseID); err != nil {
		return job.Post{}, err
	}
	p := job.Post{
		ID:           uuid.New(),
		EnterpriseID: enterpriseID,
		PostedBy:     actor.ID,
		Status:       job.PostOpen,
	}
	if err := applyPostInput(&p, in); err != nil {
		return job.Post{}, err
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return job.Post{}, fmt.Errorf("create job: %w", err)
	}
	return s.Get(ctx, p.ID)
}

func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, in PostInput) (job.Post, error) {
	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return job.Post{}, err
	}
	if err := applyPostInput(&p, in); err != nil {
		return job.Post{}, err
	}
	if err := s.posts.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Post{}, ErrJobNotFound
		}
		return job.Post{}, fmt.Errorf("update job: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Close(ctx context.Context, actor user.Actor, id uuid.UUID) (job.Post, error) {
	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return job.Post{}, err
	}
	if p.Status == job.PostClosed {
		return p, nil
	}
	if err := s.posts.SetStatus(ctx, id, job.PostClosed); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Post{}, ErrJobNotFound
		}
		return job.Post{}, fmt.Errorf("close job: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if _, err := s.managed(ctx, actor, id); err != nil {
		return err
	}
	if err := s.posts.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Apply submits an application to an open job. The first application a
// user ever makes earns FIRST_APPLICATION.
func (s *Service) Apply(ctx context.Context, userID, jobID uuid.UUID, in ApplyInput) (job.Application, error) {
	p, err := s.Get(ctx, jobID)
	if err != nil {
		return job.Application{}, err
	}
	if !p.IsOpen() {
		return job.Application{}, ErrJobNotOpen
	}

	exists, err := s.applications.ExistsActive(ctx, jobID, userID)
	if err != nil {
		return job.Application{}, fmt.Errorf("check application: %w", err)
	}
	if exists {
		return job.Application{}, ErrAlreadyApplied
	}

	a := job.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		UserID:      userID,
		Status:      job.StatusSubmitted,
		CoverLetter: text.Plain(in.CoverLetter),
		ResumeURL:   strings.TrimSpace(in.ResumeURL),
	}
	if err := s.applications.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return job.Application{}, ErrAlreadyApplied
		case errors.Is(err, repository.ErrJobNotFound):
			return job.Application{}, ErrJobNotFound
		}
		return job.Application{}, fmt.Errorf("create application: %w", err)
	}

	if s.awards != nil {
		if n, err := s.applications.CountByUser(ctx, userID); err == nil && n == 1 {
			s.awards.AwardQuietly(ctx, userID, achievement.CodeFirstApplication)
		}
	}
	return s.loadApplication(ctx, a.ID)
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]job.Application, error) {
	out, err := s.applications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *Service) ListForJob(ctx context.Context, actor user.Actor, jobID uuid.UUID, limit, offset int) ([]job.Application, error) {
	p, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(ctx, actor, p.EnterpriseID); err != nil {
		return nil, err
	}
	out, err := s.applications.ListByJob(ctx, jobID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return out, nil
}

// GetApplication is visible to the applicant and to members of the hiring
// enterprise. A member opening a SUBMITTED application marks it VIEWED.
func (s *Service) GetApplication(ctx context.Context, actor user.Actor, id uuid.UUID) (job.Application, error) {
	a, err := s.loadApplication(ctx, id)
	if err != nil {
		return job.Application{}, err
	}
	if a.UserID == actor.ID {
		return a, nil
	}

	p, err := s.Get(ctx, a.JobID)
	if err != nil {
		return job.Application{}, err
	}
	if err := s.access.RequireMember(ctx, actor, p.EnterpriseID); err != nil {
		return job.Application{}, err
	}
	if a.Status != job.StatusSubmitted {
		return a, nil
	}

	err = s.applications.UpdateStatus(ctx, id, job.StatusSubmitted, job.StatusViewed)
	if err != nil && !errors.Is(err, repository.ErrApplicationNotFound) {
		return job.Application{}, fmt.Errorf("mark viewed: %w", err)
	}
	return s.loadApplication(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, actor user.Actor, id uuid.UUID, status string) (job.Application, error) {
	to, err := job.ParseStatus(strings.ToUpper(strings.TrimSpace(status)))
	if err != nil {
		return job.Application{}, ErrInvalidStatus
	}
	a, err := s.loadApplication(ctx, id)
	if err != nil {
		return job.Application{}, err
	}
	p, err := s.Get(ctx, a.JobID)
	if err != nil {
		return job.Application{}, err
	}
	if err := s.access.RequireManager(ctx, actor, p.EnterpriseID); err != nil {
		return job.Application{}, err
	}
	if !job.IsTransitionAllowed(a.Status, to) {
		return job.Application{}, ErrTransitionNotAllowed
	}
	if err := s.applications.UpdateStatus(ctx, id, a.Status, to); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return job.Application{}, ErrStatusChanged
		}
		return job.Application{}, fmt.Errorf("update application status: %w", err)
	}
	return s.loadApplication(ctx, id)
}

// Withdraw lets the applicant pull an application still in SUBMITTED or VIEWED.
func (s *Service) Withdraw(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	a, err := s.loadApplication(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != actor.ID {
		return ErrNotApplicant
	}
	if !job.Withdrawable(a.Status) {
		return ErrCannotWithdraw
	}
	if err := s.applications.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("withdraw application: %w", err)
	}
	return nil
}

// RequireManager passes when actor manages the enterprise that posted jobID.
func (s *Service) RequireManager(ctx context.Context, actor user.Actor, jobID uuid.UUID) error {
	_, err := s.managed(ctx, actor, jobID)
	return err
}

func (s *Service) managed(ctx context.Context, actor user.Actor, id uuid.UUID) (job.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return job.Post{}, err
	}
	if err := s.access.RequireManager(ctx, actor, p.EnterpriseID); err != nil {
		return job.Post{}, err
	}
	return p, nil
}

func (s *Service) loadApplication(ctx context.Context, id uuid.UUID) (job.Application, error) {
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return job.Application{}, ErrApplicationNotFound
		}
		return job.Application{}, fmt.Errorf("load application: %w", err)
	}
	return a, nil
}

func applyPostInput(p *job.Post, in PostInput) error {
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return ErrInvalidSalaryRange
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		p.Title = title
	}
	p.Description = text.Rich(in.Description)
	p.Location = strings.TrimSpace(in.Location)
	p.EmploymentType = strings.TrimSpace(in.EmploymentType)
	p.SalaryMin = in.SalaryMin
	p.SalaryMax = in.SalaryMax
	return nil
}
