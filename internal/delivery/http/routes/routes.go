package routes

import (
	"unimarket/internal/config"
	"unimarket/internal/delivery/http/handler"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/metrics"
	"unimarket/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// Handlers groups everything the registry mounts. Market and collab handlers
// may be nil when that backend is disabled.
type Handlers struct {
	Health         *handler.HealthHandler
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Merchant       *handler.MerchantHandler
	Enterprise     *handler.EnterpriseHandler
	Job            *handler.JobHandler
	Org            *handler.OrgHandler
	Community      *handler.CommunityHandler
	Recommendation *handler.RecommendationHandler
	Achievement    *handler.AchievementHandler
	Audit          *handler.AuditHandler
	Notifications  *ws.Handler
}

type Registry struct {
	app      config.AppConfig
	handlers Handlers
	auth     *middleware.AuthMiddleware
	audit    *middleware.AuditMiddleware
}

func NewRegistry(app config.AppConfig, h Handlers, auth *middleware.AuthMiddleware, audit *middleware.AuditMiddleware) *Registry {
	return &Registry{app: app, handlers: h, auth: auth, audit: audit}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerRealtime(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(app)
	}
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (r *Registry) registerRealtime(app *fiber.App) {
	if r.handlers.Notifications == nil {
		return
	}
	app.Get("/ws/notifications", r.handlers.Notifications.HandleNotifications)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	r.RegisterV1(api.Group("/v1"))
}
