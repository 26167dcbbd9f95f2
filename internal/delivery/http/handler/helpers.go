package handler

import (
	"strconv"

	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/domain/community"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/validation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// pageParams reads limit/offset, clamping limit to [1, maxLimit].
func pageParams(c fiber.Ctx) (int, int, error) {
	limit, err := parseQueryIntStrict(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, middleware.BadRequest("limit must be an integer")
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return 0, 0, middleware.BadRequest("offset must be an integer")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("invalid %s", name)
	}
	return id, nil
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, middleware.BadRequest("invalid %s", field)
	}
	return id, nil
}

func currentActor(c fiber.Ctx) (user.Actor, error) {
	id, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return user.Actor{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return user.Actor{ID: id, Roles: middleware.RolesFromCtx(c)}, nil
}

// optionalActor is nil for anonymous callers.
func optionalActor(c fiber.Ctx) *user.Actor {
	actor, err := currentActor(c)
	if err != nil {
		return nil
	}
	return &actor
}

func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		if validation.FieldErrors(err) != nil {
			return err
		}
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return nil
}

// contentKind maps the URL segment to a forum content type.
func contentKind(c fiber.Ctx) (community.ContentType, error) {
	switch c.Params("kind") {
	case "topics":
		return community.ContentTopic, nil
	case "questions":
		return community.ContentQuestion, nil
	}
	return "", middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, nil)
}
