package middleware

import (
	"errors"
	"strings"

	"unimarket/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxRolesKey    = "roles"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			case errors.Is(err, jwt.ErrWrongTokenType):
				return NewAppError(fiber.StatusUnauthorized, "Refresh token cannot be used here", nil, err)
			default:
				return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
			}
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxRolesKey, claims.Roles)

		return c.Next()
	}
}

// Optional attaches the caller when a valid bearer token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}
		if claims, err := m.jwt.ValidateAccessToken(token); err == nil {
			c.Locals(CtxUserIDKey, claims.UserID)
			c.Locals(CtxUsernameKey, claims.Username)
			c.Locals(CtxRolesKey, claims.Roles)
		}
		return c.Next()
	}
}

// RequireRoles must run after Middleware; it passes when the caller holds any of roles.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, ok := UserIDFromCtx(c); !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		for _, r := range roles {
			if HasRole(c, r) {
				return c.Next()
			}
		}
		return NewAppError(fiber.StatusForbidden, "Insufficient role", nil, nil)
	}
}

func UserIDFromCtx(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func RolesFromCtx(c fiber.Ctx) []string {
	roles, _ := c.Locals(CtxRolesKey).([]string)
	return roles
}

func HasRole(c fiber.Ctx, role string) bool {
	for _, r := range RolesFromCtx(c) {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// BearerToken exposes header parsing to handlers that accept refresh tokens.
func BearerToken(c fiber.Ctx) (string, bool) {
	return bearerTokenFromHeader(c.Get("Authorization"))
}
