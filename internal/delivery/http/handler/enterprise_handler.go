package handler

import (
	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/enterprise"

	"github.com/gofiber/fiber/v3"
)

type EnterpriseHandler struct {
	svc *enterprise.Service
}

func NewEnterpriseHandler(svc *enterprise.Service) *EnterpriseHandler {
	return &EnterpriseHandler{svc: svc}
}

func (h *EnterpriseHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/enterprises", h.List)
	r.Get("/enterprises/:id", h.Get)
}

func (h *EnterpriseHandler) RegisterRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/enterprises", h.Create)
	r.Put("/enterprises/:id", audit("enterprise.update"), h.Update)
	r.Delete("/enterprises/:id", audit("enterprise.delete"), h.Delete)

	r.Get("/enterprises/:id/members", h.ListMembers)
	r.Post("/enterprises/:id/members", audit("enterprise.member.add"), h.AddMember)
	r.Put("/enterprises/:id/members/:userId", audit("enterprise.member.role"), h.UpdateMemberRole)
	r.Delete("/enterprises/:id/members/:userId", audit("enterprise.member.remove"), h.RemoveMember)
}

func (h *EnterpriseHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.EnterpriseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	e, err := h.svc.Create(c.Context(), actor.ID, enterpriseInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewEnterpriseResponse(e))
}

func (h *EnterpriseHandler) List(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewEnterpriseResponses(items), limit, offset)
}

func (h *EnterpriseHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	e, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEnterpriseResponse(e))
}

func (h *EnterpriseHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.EnterpriseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	e, err := h.svc.Update(c.Context(), actor, id, enterpriseInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEnterpriseResponse(e))
}

func (h *EnterpriseHandler) Delete(c fiber.Ctx) error {
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

func (h *EnterpriseHandler) ListMembers(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	members, err := h.svc.ListMembers(c.Context(), actor, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMemberResponses(members))
}

func (h *EnterpriseHandler) AddMember(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	userID, err := parseUUID("user_id", req.UserID)
	if err != nil {
		return err
	}

	m, err := h.svc.AddMember(c.Context(), actor, id, userID, req.Role)
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewMemberResponse(m))
}

func (h *EnterpriseHandler) UpdateMemberRole(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}
	var req dto.MemberRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	m, err := h.svc.UpdateMemberRole(c.Context(), actor, id, userID, req.Role)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMemberResponse(m))
}

func (h *EnterpriseHandler) RemoveMember(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}

	if err := h.svc.RemoveMember(c.Context(), actor, id, userID); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func enterpriseInput(req dto.EnterpriseRequest) enterprise.CreateInput {
	return enterprise.CreateInput{Name: req.Name, Description: req.Description, Industry: req.Industry}
}
