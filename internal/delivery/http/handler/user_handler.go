package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/pkg/response"
	useruc "unimarket/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	svc *useruc.Service
}

func NewUserHandler(svc *useruc.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
}

// RegisterAdminRoutes expects r to be guarded by RequireRoles(ADMIN).
func (h *UserHandler) RegisterAdminRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/users", h.List)
	r.Put("/users/:id/roles", audit("user.set_roles"), h.SetRoles)
	r.Delete("/users/:id", audit("user.delete"), h.Delete)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	usr, err := h.svc.GetMe(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, err := h.svc.UpdateMe(c.Context(), actor.ID, useruc.UpdateMeInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func (h *UserHandler) List(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	users, err := h.svc.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewUserResponses(users), limit, offset)
}

func (h *UserHandler) SetRoles(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetRolesRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, err := h.svc.SetRoles(c.Context(), actor.ID, id, req.Roles)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func (h *UserHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), actor.ID, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
