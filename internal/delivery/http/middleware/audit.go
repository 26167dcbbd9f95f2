package middleware

import (
	"context"
	"time"

	"unimarket/internal/domain/audit"
	"unimarket/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Log) error
}

type AuditMiddleware struct {
	recorder AuditRecorder
	logger   logger.Logger
}

func NewAuditMiddleware(recorder AuditRecorder, log logger.Logger) *AuditMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditMiddleware{recorder: recorder, logger: log.With(logger.String("component", "audit"))}
}

// Audit records the request after the handler ran. A failed write is logged
// and never changes the response.
func (m *AuditMiddleware) Audit(action string) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = normalizeError(err)
		}

		entry := audit.Log{
			ID:        uuid.New(),
			Action:    action,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    status,
			IP:        c.IP(),
			UserAgent: c.Get("User-Agent"),
			LatencyMs: time.Since(start).Milliseconds(),
		}
		if uid, ok := UserIDFromCtx(c); ok {
			entry.UserID = &uid
		}

		if m.recorder != nil {
			if recErr := m.recorder.Record(c.Context(), entry); recErr != nil {
				m.logger.Warn("audit record failed",
					logger.String("action", action),
					logger.String("request_id", RequestID(c)),
					logger.Error(recErr),
				)
			}
		}

		return err
	}
}
