package org

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/org"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/text"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound = domain.NotFound("Organization not found")
	ErrCourseNotFound       = domain.NotFound("Course not found")
	ErrInvalidOrgType       = domain.Rule("Organization type must be UNIVERSITY or ENTERPRISE")
	ErrInvalidCourseStatus  = domain.Rule("Course status must be DRAFT, PUBLISHED or ARCHIVED")
	ErrNegativeCapacity     = domain.Rule("Capacity must not be negative")
	ErrCourseNotPublished   = domain.Rule("Course is not open for enrollment")
	ErrCourseFull           = domain.Rule("Course is full")
	ErrAlreadyEnrolled      = domain.Rule("Already enrolled")
	ErrNotOrganizer         = domain.Forbidden("Only the organization creator can do this")
)

type OrganizationInput struct {
	Name        string
	Type        string
	Description string
	Website     string
}

type CourseInput struct {
	Title       string
	Description string
	Capacity    int
	Status      string
}

type Service struct {
	orgs    repository.OrganizationRepository
	courses repository.CourseRepository
}

func NewService(orgs repository.OrganizationRepository, courses repository.CourseRepository) *Service {
	return &Service{orgs: orgs, courses: courses}
}

func (s *Service) CreateOrganization(ctx context.Context, actor user.Actor, in OrganizationInput) (org.Organization, error) {
	o := org.Organization{ID: uuid.New(), CreatedBy: actor.ID}
	if err := applyOrganizationInput(&o, in); err != nil {
		return org.Organization{}, err
	}
	if err := s.orgs.Create(ctx, o); err != nil {
		return org.Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return s.GetOrganization(ctx, o.ID)
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (org.Organization, error) {
	o, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return org.Organization{}, ErrOrganizationNotFound
		}
		return org.Organization{}, fmt.Errorf("load organization: %w", err)
	}
	return o, nil
}

func (s *Service) ListOrganizations(ctx context.Context, orgType string, limit, offset int) ([]org.Organization, error) {
	orgType = strings.ToUpper(strings.TrimSpace(orgType))
	if orgType != "" && !org.ValidType(orgType) {
		return nil, ErrInvalidOrgType
	}
	out, err := s.orgs.List(ctx, orgType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return out, nil
}

func (s *Service) UpdateOrganization(ctx context.Context, actor user.Actor, id uuid.UUID, in OrganizationInput) (org.Organization, error) {
	o, err := s.organized(ctx, actor, id)
	if err != nil {
		return org.Organization{}, err
	}
	if err := applyOrganizationInput(&o, in); err != nil {
		return org.Organization{}, err
	}
	if err := s.orgs.Update(ctx, o); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return org.Organization{}, ErrOrganizationNotFound
		}
		return org.Organization{}, fmt.Errorf("update organization: %w", err)
	}
	return s.GetOrganization(ctx, id)
}

func (s *Service) DeleteOrganization(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if _, err := s.organized(ctx, actor, id); err != nil {
		return err
	}
	if err := s.orgs.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("delete organization: %w", err)
	}
	return nil
}

func (s *Service) CreateCourse(ctx context.Context, actor user.Actor, orgID uuid.UUID, in CourseInput) (org.Course, error) {
	if _, err := s.organized(ctx, actor, orgID); err != nil {
		return org.Course{}, err
	}
	c := org.Course{ID: uuid.New(), OrganizationID: orgID, Status: org.CourseDraft}
	if err := applyCourseInput(&c, in); err != nil {
		return org.Course{}, err
	}
	if err := s.courses.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return org.Course{}, ErrOrganizationNotFound
		}
		return org.Course{}, fmt.Errorf("create course: %w", err)
	}
	return s.GetCourse(ctx, c.ID)
}

func (s *Service) GetCourse(ctx context.Context, id uuid.UUID) (org.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return org.Course{}, ErrCourseNotFound
		}
		return org.Course{}, fmt.Errorf("load course: %w", err)
	}
	return c, nil
}

// ListCourses hides drafts and archived courses from everyone but the organizer.
func (s *Service) ListCourses(ctx context.Context, actor *user.Actor, orgID uuid.UUID, limit, offset int) ([]org.Course, error) {
	o, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	publishedOnly := actor == nil || !(actor.IsAdmin() || actor.ID == o.CreatedBy)
	out, err := s.courses.ListByOrganization(ctx, orgID, publishedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

func (s *Service) UpdateCourse(ctx context.Context, actor user.Actor, id uuid.UUID, in CourseInput) (org.Course, error) {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return org.Course{}, err
	}
	if _, err := s.organized(ctx, actor, c.OrganizationID); err != nil {
		return org.Course{}, err
	}
	if err := applyCourseInput(&c, in); err != nil {
		return org.Course{}, err
	}
	if err := s.courses.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return org.Course{}, ErrCourseNotFound
		}
		return org.Course{}, fmt.Errorf("update course: %w", err)
	}
	return s.GetCourse(ctx, id)
}

func (s *Service) DeleteCourse(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.organized(ctx, actor, c.OrganizationID); err != nil {
		return err
	}
	if err := s.courses.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// Enroll requires a PUBLISHED course with room left. Capacity 0 means unlimited.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (org.Course, error) {
	c, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return org.Course{}, err
	}
	if c.Status != org.CoursePublished {
		return org.Course{}, ErrCourseNotPublished
	}
	enrolled, err := s.courses.IsEnrolled(ctx, courseID, userID)
	if err != nil {
		return org.Course{}, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return org.Course{}, ErrAlreadyEnrolled
	}
	if err := s.courses.Enroll(ctx, courseID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseFull):
			return org.Course{}, ErrCourseFull
		case errors.Is(err, repository.ErrDuplicate):
			return org.Course{}, ErrAlreadyEnrolled
		case errors.Is(err, repository.ErrCourseNotFound):
			return org.Course{}, ErrCourseNotFound
		}
		return org.Course{}, fmt.Errorf("enroll: %w", err)
	}
	return s.GetCourse(ctx, courseID)
}

func (s *Service) ListMyCourses(ctx context.Context, userID uuid.UUID) ([]org.Course, error) {
	out, err := s.courses.ListEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return out, nil
}

func (s *Service) organized(ctx context.Context, actor user.Actor, orgID uuid.UUID) (org.Organization, error) {
	o, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return org.Organization{}, err
	}
	if !actor.IsAdmin() && o.CreatedBy != actor.ID {
		return org.Organization{}, ErrNotOrganizer
	}
	return o, nil
}

func applyOrganizationInput(o *org.Organization, in OrganizationInput) error {
	if t := strings.ToUpper(strings.TrimSpace(in.Type)); t != "" {
		if !org.ValidType(t) {
			return ErrInvalidOrgType
		}
		o.Type = t
	}
	if o.Type == "" {
		return ErrInvalidOrgType
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		o.Name = name
	}
	o.Description = text.Plain(in.Description)
	o.Website = strings.TrimSpace(in.Website)
	return nil
}

func applyCourseInput(c *org.Course, in CourseInput) error {
	if in.Capacity < 0 {
		return ErrNegativeCapacity
	}
	if st := strings.ToUpper(strings.TrimSpace(in.Status)); st != "" {
		if !org.ValidCourseStatus(st) {
			return ErrInvalidCourseStatus
		}
		c.Status = st
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		c.Title = title
	}
	c.Description = text.Rich(in.Description)
	c.Capacity = in.Capacity
	return nil
}
