package handler

import (
	"strings"

	"unimarket/internal/delivery/http/dto"
	domainjob "unimarket/internal/domain/job"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
)

type JobHandler struct {
	svc *job.Service
}

func NewJobHandler(svc *job.Service) *JobHandler {
	return &JobHandler{svc: svc}
}

func (h *JobHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs", h.List)
	r.Get("/jobs/:id", h.Get)
	r.Get("/enterprises/:id/jobs", h.ListByEnterprise)
}

func (h *JobHandler) RegisterRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/enterprises/:id/jobs", h.Create)
	r.Put("/jobs/:id", audit("job.update"), h.Update)
	r.Post("/jobs/:id/close", audit("job.close"), h.Close)
	r.Delete("/jobs/:id", audit("job.delete"), h.Delete)

	r.Post("/jobs/:id/applications", h.Apply)
	r.Get("/jobs/:id/applications", h.ListForJob)
	r.Get("/applications/:id", h.GetApplication)
	r.Put("/applications/:id/status", audit("application.status"), h.UpdateStatus)
	r.Delete("/applications/:id", h.Withdraw)
}

func (h *JobHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/applications", h.ListMine)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.List(c.Context(), domainjob.ListFilter{
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Location: strings.TrimSpace(c.Query("location")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewJobPostResponses(items), limit, offset)
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobPostResponse(p))
}

func (h *JobHandler) ListByEnterprise(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListByEnterprise(c.Context(), id, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewJobPostResponses(items), limit, offset)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	enterpriseID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.JobPostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.svc.Create(c.Context(), actor, enterpriseID, postInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewJobPostResponse(p))
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.JobPostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.svc.Update(c.Context(), actor, id, postInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobPostResponse(p))
}

func (h *JobHandler) Close(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	p, err := h.svc.Close(c.Context(), actor, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobPostResponse(p))
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *JobHandler) Apply(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ApplyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.svc.Apply(c.Context(), actor.ID, jobID, job.ApplyInput{CoverLetter: req.CoverLetter, ResumeURL: req.ResumeURL})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewApplicationResponse(app))
}

func (h *JobHandler) ListMine(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListMine(c.Context(), actor.ID, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewApplicationResponses(items), limit, offset)
}

func (h *JobHandler) ListForJob(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListForJob(c.Context(), actor, jobID, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewApplicationResponses(items), limit, offset)
}

func (h *JobHandler) GetApplication(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	app, err := h.svc.GetApplication(c.Context(), actor, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(app))
}

func (h *JobHandler) UpdateStatus(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ApplicationStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.svc.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(app))
}

func (h *JobHandler) Withdraw(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Withdraw(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func postInput(req dto.JobPostRequest) job.PostInput {
	return job.PostInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
	}
}
