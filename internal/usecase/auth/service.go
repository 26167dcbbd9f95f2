package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"unimarket/internal/domain"
	"unimarket/internal/domain/user"
	"unimarket/internal/repository"
)

var (
	ErrUsernameTaken          = domain.Rule("Username already taken")
	ErrEmailAlreadyRegistered = domain.Rule("Email already registered")
	ErrInvalidCredentials     = &domain.BusinessError{Message: "Invalid account or password", Kind: domain.ErrUnauthorized}
	ErrWeakPassword           = domain.Rule("Password must be at least 8 characters")
	ErrIdentityTaken          = domain.Rule("This provider account is already linked")
	ErrProviderAlreadyLinked  = domain.Rule("A provider account of this type is already linked")
	ErrIdentityNotFound       = domain.NotFound("Linked identity not found")
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Account  string
	Password string
}

type LinkIdentityInput struct {
	Provider   string
	ExternalID string
	Email      string
}

type Service struct {
	users      user.Repository
	identities user.IdentityRepository
}

func NewService(users user.Repository, identities user.IdentityRepository) *Service {
	return &Service{users: users, identities: identities}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	if !IsValidPassword(in.Password) {
		return user.User{}, ErrWeakPassword
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return user.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return user.User{}, ErrUsernameTaken
	}
	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return user.User{}, err
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Roles:        []string{user.RoleUser},
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			if taken, exErr := s.users.ExistsByUsername(ctx, username); exErr == nil && taken {
				return user.User{}, ErrUsernameTaken
			}
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, fmt.Errorf("reload user: %w", err)
	}
	return SanitizeUser(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	account := strings.TrimSpace(in.Account)
	if account == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return SanitizeUser(u), nil
}

// Active returns the current user state, used when refreshing tokens.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("load user: %w", err)
	}
	return SanitizeUser(u), nil
}

func (s *Service) ListIdentities(ctx context.Context, userID uuid.UUID) ([]user.OAuthIdentity, error) {
	out, err := s.identities.ListIdentities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return out, nil
}

// LinkIdentity binds a provider account to userID. Each provider account maps
// to one local user, and each user has at most one account per provider.
func (s *Service) LinkIdentity(ctx context.Context, userID uuid.UUID, in LinkIdentityInput) (user.OAuthIdentity, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	externalID := strings.TrimSpace(in.ExternalID)

	existing, err := s.identities.FindIdentity(ctx, provider, externalID)
	switch {
	case err == nil:
		if existing.UserID == userID {
			return existing, nil
		}
		return user.OAuthIdentity{}, ErrIdentityTaken
	case !errors.Is(err, user.ErrIdentityNotFound):
		return user.OAuthIdentity{}, fmt.Errorf("find identity: %w", err)
	}

	id := user.OAuthIdentity{
		ID:         uuid.New(),
		UserID:     userID,
		Provider:   provider,
		ExternalID: externalID,
		Email:      NormalizeEmail(in.Email),
	}
	if err := s.identities.LinkIdentity(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return user.OAuthIdentity{}, ErrProviderAlreadyLinked
		}
		return user.OAuthIdentity{}, fmt.Errorf("link identity: %w", err)
	}
	return id, nil
}

func (s *Service) UnlinkIdentity(ctx context.Context, userID uuid.UUID, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := s.identities.UnlinkIdentity(ctx, userID, provider); err != nil {
		if errors.Is(err, user.ErrIdentityNotFound) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("unlink identity: %w", err)
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func SanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
