package handler

import (
	"strings"

	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/org"

	"github.com/gofiber/fiber/v3"
)

type OrgHandler struct {
	svc *org.Service
}

func NewOrgHandler(svc *org.Service) *OrgHandler {
	return &OrgHandler{svc: svc}
}

func (h *OrgHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/organizations", h.ListOrganizations)
	r.Get("/organizations/:id", h.GetOrganization)
	r.Get("/organizations/:id/courses", h.ListCourses)
	r.Get("/courses/:id", h.GetCourse)
}

func (h *OrgHandler) RegisterRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/organizations", h.CreateOrganization)
	r.Put("/organizations/:id", audit("organization.update"), h.UpdateOrganization)
	r.Delete("/organizations/:id", audit("organization.delete"), h.DeleteOrganization)
	r.Post("/organizations/:id/courses", h.CreateCourse)
	r.Put("/courses/:id", audit("course.update"), h.UpdateCourse)
	r.Delete("/courses/:id", audit("course.delete"), h.DeleteCourse)
	r.Post("/courses/:id/enrollments", h.Enroll)
}

func (h *OrgHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/courses", h.ListMyCourses)
}

func (h *OrgHandler) CreateOrganization(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.OrganizationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.svc.CreateOrganization(c.Context(), actor, organizationInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewOrganizationResponse(o))
}

func (h *OrgHandler) ListOrganizations(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListOrganizations(c.Context(), strings.ToUpper(strings.TrimSpace(c.Query("type"))), limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewOrganizationResponses(items), limit, offset)
}

func (h *OrgHandler) GetOrganization(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	o, err := h.svc.GetOrganization(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewOrganizationResponse(o))
}

func (h *OrgHandler) UpdateOrganization(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.OrganizationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.svc.UpdateOrganization(c.Context(), actor, id, organizationInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewOrganizationResponse(o))
}

func (h *OrgHandler) DeleteOrganization(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteOrganization(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *OrgHandler) CreateCourse(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	orgID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CourseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	course, err := h.svc.CreateCourse(c.Context(), actor, orgID, courseInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewCourseResponse(course))
}

func (h *OrgHandler) ListCourses(c fiber.Ctx) error {
	orgID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListCourses(c.Context(), optionalActor(c), orgID, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewCourseResponses(items), limit, offset)
}

func (h *OrgHandler) GetCourse(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	course, err := h.svc.GetCourse(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCourseResponse(course))
}

func (h *OrgHandler) UpdateCourse(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CourseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	course, err := h.svc.UpdateCourse(c.Context(), actor, id, courseInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCourseResponse(course))
}

func (h *OrgHandler) DeleteCourse(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteCourse(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *OrgHandler) Enroll(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	course, err := h.svc.Enroll(c.Context(), actor.ID, id)
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewCourseResponse(course))
}

func (h *OrgHandler) ListMyCourses(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListMyCourses(c.Context(), actor.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCourseResponses(items))
}

func organizationInput(req dto.OrganizationRequest) org.OrganizationInput {
	return org.OrganizationInput{Name: req.Name, Type: req.Type, Description: req.Description, Website: req.Website}
}

func courseInput(req dto.CourseRequest) org.CourseInput {
	return org.CourseInput{Title: req.Title, Description: req.Description, Capacity: req.Capacity, Status: req.Status}
}
