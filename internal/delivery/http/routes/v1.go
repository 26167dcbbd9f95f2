package routes

import (
	"unimarket/internal/config"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/domain/user"

	"github.com/gofiber/fiber/v3"
)

// RegisterV1 mounts public reads first, then everything behind the access
// token filter. The filter is attached per resource prefix so unknown paths
// still fall through to 404.
func (r *Registry) RegisterV1(v1 fiber.Router) {
	if v1 == nil {
		return
	}

	h := r.handlers
	market := r.app.Enabled(config.BackendMarket)
	collab := r.app.Enabled(config.BackendCollab)
	audit := r.audit.Audit

	h.Auth.RegisterRoutes(v1.Group("/auth"))

	public := v1.Group("", r.auth.Optional())
	if market {
		h.Merchant.RegisterPublicRoutes(public)
		h.Enterprise.RegisterPublicRoutes(public)
		h.Job.RegisterPublicRoutes(public)
	}
	if collab {
		h.Org.RegisterPublicRoutes(public)
		h.Community.RegisterPublicRoutes(public.Group("/community"))
	}

	for _, prefix := range protectedPrefixes(market, collab) {
		v1.Use(prefix, r.auth.Middleware())
	}
	protected := v1

	h.Auth.RegisterIdentityRoutes(protected.Group("/auth/oauth"))

	me := protected.Group("/users/me")
	h.User.RegisterRoutes(protected.Group("/users"))
	if market {
		h.Merchant.RegisterMeRoutes(me)
		h.Job.RegisterMeRoutes(me)
	}
	if collab {
		h.Org.RegisterMeRoutes(me)
		h.Community.RegisterMeRoutes(me)
		h.Recommendation.RegisterMeRoutes(me)
		h.Achievement.RegisterMeRoutes(me)
		// After the /users/me routes so "me" is never read as an id.
		h.Achievement.RegisterRoutes(protected)
	}

	admin := protected.Group("/admin", middleware.RequireRoles(user.RoleAdmin))
	h.User.RegisterAdminRoutes(admin, audit)
	h.Audit.RegisterAdminRoutes(admin)
	if collab {
		h.Recommendation.RegisterAdminRoutes(admin, audit)
		h.Achievement.RegisterAdminRoutes(admin, audit)
	}

	if market {
		h.Merchant.RegisterRoutes(protected, audit)
		h.Enterprise.RegisterRoutes(protected, audit)
		h.Job.RegisterRoutes(protected, audit)
	}
	if collab {
		h.Org.RegisterRoutes(protected, audit)
		h.Community.RegisterRoutes(protected.Group("/community"), audit)
		h.Recommendation.RegisterRoutes(protected)
	}
}

func protectedPrefixes(market, collab bool) []string {
	prefixes := []string{"/auth/oauth", "/users", "/admin"}
	if market {
		prefixes = append(prefixes, "/merchants", "/products", "/enterprises", "/jobs", "/applications")
	}
	if collab {
		prefixes = append(prefixes, "/organizations", "/courses", "/community", "/achievements", "/recommendations")
		if !market {
			prefixes = append(prefixes, "/jobs")
		}
	}
	return prefixes
}
