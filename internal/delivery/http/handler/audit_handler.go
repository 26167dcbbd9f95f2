package handler

import (
	"strings"

	"unimarket/internal/delivery/http/dto"
	domainaudit "unimarket/internal/domain/audit"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/audit"

	"github.com/gofiber/fiber/v3"
)

type AuditHandler struct {
	svc *audit.Service
}

func NewAuditHandler(svc *audit.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

func (h *AuditHandler) RegisterAdminRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/audit/logs", h.List)
}

func (h *AuditHandler) List(c fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	f := domainaudit.Filter{Action: strings.TrimSpace(c.Query("action")), Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := parseUUID("user_id", raw)
		if err != nil {
			return err
		}
		f.UserID = &id
	}

	logs, err := h.svc.List(c.Context(), f)
	if err != nil {
		return err
	}
	return response.Paged(c, dto.NewAuditLogResponses(logs), limit, offset)
}
