package app

import (
	"fmt"
	"strings"

	"unimarket/internal/config"
	"unimarket/internal/delivery/http/handler"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/delivery/http/routes"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/pkg/validation"
	"unimarket/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the Fiber app over an assembled container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:         c.Config.App.AppName,
		StructValidator: validation.New(),
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap connects to PostgreSQL and Redis and returns the app plus its cleanup.
func Bootstrap(cfg config.Config, log logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessLog := middleware.NewAccessLogMiddleware(c.Logger)
	errMw := middleware.NewErrorMiddleware(c.Logger)

	app.Use(accessLog.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	svc := c.Services
	h := routes.Handlers{
		Health:         handler.NewHealthHandler(c.Config.App, c.DB, c.Cache),
		Auth:           handler.NewAuthHandler(svc.Auth, svc.Accounts),
		User:           handler.NewUserHandler(svc.Users),
		Merchant:       handler.NewMerchantHandler(svc.Merchants),
		Enterprise:     handler.NewEnterpriseHandler(svc.Enterprises),
		Job:            handler.NewJobHandler(svc.Jobs),
		Org:            handler.NewOrgHandler(svc.Orgs),
		Community:      handler.NewCommunityHandler(svc.Community),
		Recommendation: handler.NewRecommendationHandler(svc.Recommendation),
		Achievement:    handler.NewAchievementHandler(svc.Achievements),
		Audit:          handler.NewAuditHandler(svc.Audit),
		Notifications:  ws.NewHandler(c.Hub, c.JWT, c.Config.App.WSOrigins, c.Logger),
	}

	auth := middleware.NewAuthMiddleware(c.JWT)
	audit := middleware.NewAuditMiddleware(svc.Audit, c.Logger)

	routes.NewRegistry(c.Config.App, h, auth, audit).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
