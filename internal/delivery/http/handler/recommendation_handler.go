package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/recommendation"

	"github.com/gofiber/fiber/v3"
)

type RecommendationHandler struct {
	svc *recommendation.Service
}

func NewRecommendationHandler(svc *recommendation.Service) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/recommendations/jobs", h.ForMe)
	r.Get("/jobs/:id/recommendations/talents", h.ForJob)
}

func (h *RecommendationHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Put("/features", h.UpdateMyFeature)
}

func (h *RecommendationHandler) RegisterAdminRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Put("/features/jobs/:id", audit("recommendation.job_feature"), h.UpdateJobFeature)
	r.Post("/recommendations/refresh", audit("recommendation.refresh"), h.Refresh)
}

func (h *RecommendationHandler) ForMe(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", defaultLimit)
	if err != nil {
		return middleware.BadRequest("limit must be an integer")
	}

	items, err := h.svc.ForUser(c.Context(), actor.ID, limit)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobRecommendationResponses(items))
}

func (h *RecommendationHandler) ForJob(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", defaultLimit)
	if err != nil {
		return middleware.BadRequest("limit must be an integer")
	}

	items, err := h.svc.ForJob(c.Context(), actor, jobID, limit)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTalentRecommendationResponses(items))
}

func (h *RecommendationHandler) UpdateMyFeature(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.FeatureRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	f, err := h.svc.UpdateUserFeature(c.Context(), actor.ID, recommendation.FeatureInput{Vector: req.Vector, Tags: req.Tags})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewFeatureResponse(f))
}

func (h *RecommendationHandler) UpdateJobFeature(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.FeatureRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	f, err := h.svc.UpdateJobFeature(c.Context(), jobID, recommendation.FeatureInput{Vector: req.Vector, Tags: req.Tags})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewFeatureResponse(f))
}

func (h *RecommendationHandler) Refresh(c fiber.Ctx) error {
	res, err := h.svc.Refresh(c.Context(), "api")
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RefreshResponse{
		Users:      res.Users,
		Jobs:       res.Jobs,
		ByUser:     res.ByUser,
		ByJob:      res.ByJob,
		DurationMs: res.Duration.Milliseconds(),
	})
}
