package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/user"
	"unimarket/internal/repository"
	ucauth "unimarket/internal/usecase/auth"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = domain.NotFound("User not found")
	ErrEmailTaken       = domain.Rule("Email already registered")
	ErrWeakPassword     = domain.Rule("Password must be at least 8 characters")
	ErrUnknownRole      = domain.Rule("Unknown role")
	ErrCannotDeleteSelf = domain.Rule("Administrators cannot delete their own account")
	ErrCannotDemoteSelf = domain.Rule("Administrators cannot remove their own ADMIN role")
)

type UpdateMeInput struct {
	DisplayName *string
	Email       *string
	Password    *string
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.get(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	return ucauth.SanitizeUser(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	usr, err := s.get(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	if in.DisplayName != nil {
		if name := strings.TrimSpace(*in.DisplayName); name != "" {
			usr.DisplayName = name
		}
	}

	if in.Email != nil {
		email := ucauth.NormalizeEmail(*in.Email)
		if email != "" && email != usr.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return user.User{}, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return user.User{}, ErrEmailTaken
			}
			usr.Email = email
		}
	}

	if in.Password != nil {
		if !ucauth.IsValidPassword(*in.Password) {
			return user.User{}, ErrWeakPassword
		}
		hash, err := ucauth.HashPassword(*in.Password)
		if err != nil {
			return user.User{}, err
		}
		usr.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, usr); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return user.User{}, ErrEmailTaken
		case errors.Is(err, user.ErrNotFound):
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	return s.GetMe(ctx, userID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = ucauth.SanitizeUser(users[i])
	}
	return users, nil
}

// SetRoles replaces a user's roles. USER is always kept.
func (s *Service) SetRoles(ctx context.Context, actorID, userID uuid.UUID, roles []string) (user.User, error) {
	normalized := make([]string, 0, len(roles)+1)
	seen := map[string]bool{user.RoleUser: true}
	normalized = append(normalized, user.RoleUser)
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" || seen[r] {
			continue
		}
		if !user.ValidRole(r) {
			return user.User{}, ErrUnknownRole
		}
		seen[r] = true
		normalized = append(normalized, r)
	}
	sort.Strings(normalized)

	if actorID == userID && !seen[user.RoleAdmin] {
		return user.User{}, ErrCannotDemoteSelf
	}

	if _, err := s.get(ctx, userID); err != nil {
		return user.User{}, err
	}
	if err := s.users.SetRoles(ctx, userID, normalized); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("set roles: %w", err)
	}
	return s.GetMe(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.users.SoftDeleteUser(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("load user: %w", err)
	}
	return usr, nil
}
