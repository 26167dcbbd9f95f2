package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase"
	ucauth "unimarket/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc       usecase.AuthUsecase
	accounts *ucauth.Service
}

func NewAuthHandler(uc usecase.AuthUsecase, accounts *ucauth.Service) *AuthHandler {
	return &AuthHandler{uc: uc, accounts: accounts}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

// RegisterIdentityRoutes mounts identity linking on an authenticated router.
func (h *AuthHandler) RegisterIdentityRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/identities", h.ListIdentities)
	r.Post("/identities", h.LinkIdentity)
	r.Delete("/identities/:provider", h.UnlinkIdentity)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, pair, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}

	return response.Created(c, dto.AuthResponse{User: dto.NewUserResponse(usr), TokenResponse: tokenResponse(pair)})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, pair, err := h.uc.Login(c.Context(), ucauth.LoginInput{Account: req.Account, Password: req.Password})
	if err != nil {
		return err
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthResponse{User: dto.NewUserResponse(usr), TokenResponse: tokenResponse(pair)})
}

// Refresh takes the refresh token from the Authorization header.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	pair, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, tokenResponse(pair))
}

func (h *AuthHandler) ListIdentities(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	ids, err := h.accounts.ListIdentities(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	out := make([]dto.IdentityResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, dto.NewIdentityResponse(id))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *AuthHandler) LinkIdentity(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.LinkIdentityRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	id, err := h.accounts.LinkIdentity(c.Context(), actor.ID, ucauth.LinkIdentityInput{
		Provider:   req.Provider,
		ExternalID: req.ExternalID,
		Email:      req.Email,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewIdentityResponse(id))
}

func (h *AuthHandler) UnlinkIdentity(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.accounts.UnlinkIdentity(c.Context(), actor.ID, c.Params("provider")); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func tokenResponse(p usecase.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		TokenType:        "Bearer",
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}
