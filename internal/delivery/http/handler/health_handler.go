package handler

import (
	"context"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/domain"
	"unimarket/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	app   config.AppConfig
	db    Pinger
	redis Pinger
	now   func() time.Time
}

// NewHealthHandler accepts nil pingers; a missing dependency reports unhealthy.
func NewHealthHandler(app config.AppConfig, db, redis Pinger) *HealthHandler {
	return &HealthHandler{app: app, db: db, redis: redis, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Health answers 200 while the database is reachable. Redis is optional and
// only reported.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbDep := check(ctx, "postgres", h.db)
	redisDep := check(ctx, "redis", h.redis)

	backends := h.app.Backends
	if len(backends) == 0 {
		backends = []string{config.BackendMarket, config.BackendCollab}
	}

	status := domain.SystemStatus{
		App:             h.app.AppName,
		Environment:     h.app.Environment,
		Backends:        backends,
		DatabaseHealthy: dbDep.Healthy,
		RedisHealthy:    redisDep.Healthy,
		Dependencies:    []domain.DependencyStatus{dbDep, redisDep},
		ServerTime:      h.now().UTC(),
	}

	code := fiber.StatusOK
	if !dbDep.Healthy {
		code = fiber.StatusServiceUnavailable
	}
	return response.Success(c, code, "", status)
}

func check(ctx context.Context, name string, p Pinger) domain.DependencyStatus {
	dep := domain.DependencyStatus{Name: name}
	if p == nil {
		dep.Error = "not configured"
		return dep
	}
	if err := p.Ping(ctx); err != nil {
		dep.Error = err.Error()
		return dep
	}
	dep.Healthy = true
	return dep
}
