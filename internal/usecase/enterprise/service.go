package enterprise

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/enterprise"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/text"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEnterpriseNotFound = domain.NotFound("Enterprise not found")
	ErrMemberNotFound     = domain.NotFound("Member not found")
	ErrUserNotFound       = domain.NotFound("User not found")
	ErrNameTaken          = domain.Rule("Enterprise name already taken")
	ErrAlreadyMember      = domain.Rule("User is already a member")
	ErrNotManager         = domain.Forbidden("Only enterprise owners and admins can do this")
	ErrNotMember          = domain.Forbidden("Only enterprise members can do this")
	ErrInvalidMemberRole  = domain.Rule("Member role must be OWNER, ADMIN or MEMBER")
	ErrLastOwner          = domain.Rule("The last owner cannot be removed")
)

type CreateInput struct {
	Name        string
	Description string
	Industry    string
}

type Service struct {
	repo repository.EnterpriseRepository
}

func NewService(repo repository.EnterpriseRepository) *Service {
	return &Service{repo: repo}
}

// Create registers an enterprise; the creator becomes its OWNER.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (enterprise.Enterprise, error) {
	name := strings.TrimSpace(in.Name)
	e := enterprise.Enterprise{
		ID:          uuid.New(),
		Name:        name,
		Slug:        text.Slug(name),
		Description: text.Plain(in.Description),
		Industry:    strings.TrimSpace(in.Industry),
		CreatedBy:   creatorID,
	}
	if err := s.repo.CreateWithOwner(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return enterprise.Enterprise{}, ErrNameTaken
		}
		return enterprise.Enterprise{}, fmt.Errorf("create enterprise: %w", err)
	}
	return s.Get(ctx, e.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (enterprise.Enterprise, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEnterpriseNotFound) {
			return enterprise.Enterprise{}, ErrEnterpriseNotFound
		}
		return enterprise.Enterprise{}, fmt.Errorf("load enterprise: %w", err)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]enterprise.Enterprise, error) {
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list enterprises: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, in CreateInput) (enterprise.Enterprise, error) {
	if err := s.RequireManager(ctx, actor, id); err != nil {
		return enterprise.Enterprise{}, err
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return enterprise.Enterprise{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		e.Name = name
	}
	e.Description = text.Plain(in.Description)
	e.Industry = strings.TrimSpace(in.Industry)
	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrEnterpriseNotFound) {
			return enterprise.Enterprise{}, ErrEnterpriseNotFound
		}
		return enterprise.Enterprise{}, fmt.Errorf("update enterprise: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	m, err := s.membership(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && (m == nil || m.Role != enterprise.RoleOwner) {
		return ErrNotManager
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEnterpriseNotFound) {
			return ErrEnterpriseNotFound
		}
		return fmt.Errorf("delete enterprise: %w", err)
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, actor user.Actor, id uuid.UUID) ([]enterprise.Member, error) {
	if err := s.RequireMember(ctx, actor, id); err != nil {
		return nil, err
	}
	out, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

func (s *Service) AddMember(ctx context.Context, actor user.Actor, id, userID uuid.UUID, role string) (enterprise.Member, error) {
	role = normalizeRole(role)
	if !enterprise.ValidMemberRole(role) {
		return enterprise.Member{}, ErrInvalidMemberRole
	}
	if err := s.RequireManager(ctx, actor, id); err != nil {
		return enterprise.Member{}, err
	}
	m := enterprise.Member{EnterpriseID: id, UserID: userID, Role: role}
	if err := s.repo.AddMember(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return enterprise.Member{}, ErrAlreadyMember
		case errors.Is(err, user.ErrNotFound):
			return enterprise.Member{}, ErrUserNotFound
		}
		return enterprise.Member{}, fmt.Errorf("add member: %w", err)
	}
	return s.getMember(ctx, id, userID)
}

func (s *Service) UpdateMemberRole(ctx context.Context, actor user.Actor, id, userID uuid.UUID, role string) (enterprise.Member, error) {
	role = normalizeRole(role)
	if !enterprise.ValidMemberRole(role) {
		return enterprise.Member{}, ErrInvalidMemberRole
	}
	if err := s.RequireManager(ctx, actor, id); err != nil {
		return enterprise.Member{}, err
	}
	current, err := s.getMember(ctx, id, userID)
	if err != nil {
		return enterprise.Member{}, err
	}
	if current.Role == enterprise.RoleOwner && role != enterprise.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, id); err != nil {
			return enterprise.Member{}, err
		}
	}
	if err := s.repo.UpdateMemberRole(ctx, id, userID, role); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return enterprise.Member{}, ErrMemberNotFound
		}
		return enterprise.Member{}, fmt.Errorf("update member: %w", err)
	}
	return s.getMember(ctx, id, userID)
}

// RemoveMember refuses to remove the last OWNER of an enterprise.
func (s *Service) RemoveMember(ctx context.Context, actor user.Actor, id, userID uuid.UUID) error {
	if err := s.RequireManager(ctx, actor, id); err != nil {
		return err
	}
	m, err := s.getMember(ctx, id, userID)
	if err != nil {
		return err
	}
	if m.Role == enterprise.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.RemoveMember(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// RequireManager passes for platform admins and enterprise OWNER/ADMIN members.
func (s *Service) RequireManager(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	m, err := s.membership(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if actor.IsAdmin() || (m != nil && enterprise.CanManage(m.Role)) {
		return nil
	}
	return ErrNotManager
}

func (s *Service) RequireMember(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	m, err := s.membership(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if actor.IsAdmin() || m != nil {
		return nil
	}
	return ErrNotMember
}

// membership loads the enterprise first so a missing tenant is a 404, not a 403.
func (s *Service) membership(ctx context.Context, id, userID uuid.UUID) (*enterprise.Member, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMember(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return &m, nil
}

func (s *Service) getMember(ctx context.Context, id, userID uuid.UUID) (enterprise.Member, error) {
	m, err := s.repo.GetMember(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return enterprise.Member{}, ErrMemberNotFound
		}
		return enterprise.Member{}, fmt.Errorf("load member: %w", err)
	}
	return m, nil
}

func (s *Service) ensureAnotherOwner(ctx context.Context, id uuid.UUID) error {
	owners, err := s.repo.CountOwners(ctx, id)
	if err != nil {
		return fmt.Errorf("count owners: %w", err)
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func normalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return enterprise.RoleMember
	}
	return role
}
