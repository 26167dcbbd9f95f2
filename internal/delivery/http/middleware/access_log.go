package middleware

import (
	"time"

	"unimarket/internal/metrics"
	"unimarket/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

type AccessLogMiddleware struct {
	logger logger.Logger
}

func NewAccessLogMiddleware(log logger.Logger) *AccessLogMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AccessLogMiddleware{logger: log.With(logger.String("component", "http"))}
}

// Middleware assigns a request id, records Prometheus request metrics and
// writes one structured access line per request.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)

		metrics.HTTPStarted()
		err := c.Next()
		dur := time.Since(start)

		status := c.Response().StatusCode()
		route := ""
		if r := c.Route(); r != nil {
			route = r.Path
		}
		metrics.HTTPFinished(c.Method(), route, status, dur)

		fields := []logger.Field{
			logger.String("request_id", rid),
			logger.String("ip", c.IP()),
			logger.String("method", c.Method()),
			logger.String("path", c.OriginalURL()),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Duration("latency", dur),
			logger.Int("req_bytes", c.Request().Header.ContentLength()),
			logger.Int("resp_bytes", len(c.Response().Body())),
			logger.String("ua", c.Get("User-Agent")),
		}
		if uid, ok := UserIDFromCtx(c); ok {
			fields = append(fields, logger.String("user_id", uid.String()))
		}

		switch {
		case status >= 500:
			m.logger.Error("http access", fields...)
		case status >= 400:
			m.logger.Warn("http access", fields...)
		default:
			m.logger.Info("http access", fields...)
		}

		return err
	}
}

func RequestID(c fiber.Ctx) string {
	if v, ok := c.Locals(CtxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
