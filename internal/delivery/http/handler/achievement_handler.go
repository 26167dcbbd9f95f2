package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/achievement"

	"github.com/gofiber/fiber/v3"
)

type AchievementHandler struct {
	svc *achievement.Service
}

func NewAchievementHandler(svc *achievement.Service) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

func (h *AchievementHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/achievements", h.List)
	r.Get("/users/:id/achievements", h.ListForUser)
}

func (h *AchievementHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/achievements", h.ListMine)
}

func (h *AchievementHandler) RegisterAdminRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/achievements", audit("achievement.define"), h.Define)
	r.Post("/users/:id/achievements", audit("achievement.award"), h.Award)
}

func (h *AchievementHandler) List(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAchievementResponses(items))
}

func (h *AchievementHandler) ListMine(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListForUser(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserAchievementResponses(items))
}

func (h *AchievementHandler) ListForUser(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.svc.ListForUser(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserAchievementResponses(items))
}

func (h *AchievementHandler) Define(c fiber.Ctx) error {
	var req dto.AchievementRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	a, err := h.svc.Define(c.Context(), achievement.DefineInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewAchievementResponse(a))
}

func (h *AchievementHandler) Award(c fiber.Ctx) error {
	userID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AwardRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	awarded, err := h.svc.Award(c.Context(), userID, req.Code)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AwardResponse{Code: req.Code, Awarded: awarded})
}
