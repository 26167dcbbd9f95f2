package dto

import (
	"time"

	"unimarket/internal/domain/user"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

type LoginRequest struct {
	Account  string `json:"account" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type LinkIdentityRequest struct {
	Provider   string `json:"provider" validate:"required,max=32"`
	ExternalID string `json:"external_id" validate:"required,max=128"`
	Email      string `json:"email" validate:"omitempty,email"`
}

type UpdateMeRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type SetRolesRequest struct {
	Roles []string `json:"roles" validate:"required,dive,oneof=USER MERCHANT ENTERPRISE ADMIN"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Roles:       roles,
		CreatedAt:   u.CreatedAt,
	}
}

func NewUserResponses(users []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type TokenResponse struct {
	TokenType        string    `json:"token_type"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type AuthResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}

type IdentityResponse struct {
	Provider   string    `json:"provider"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email,omitempty"`
	LinkedAt   time.Time `json:"linked_at"`
}

func NewIdentityResponse(id user.OAuthIdentity) IdentityResponse {
	return IdentityResponse{
		Provider:   id.Provider,
		ExternalID: id.ExternalID,
		Email:      id.Email,
		LinkedAt:   id.CreatedAt,
	}
}
