package handler

import (
	"strings"

	"unimarket/internal/delivery/http/dto"
	"unimarket/internal/delivery/http/middleware"
	domaincommunity "unimarket/internal/domain/community"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/response"
	"unimarket/internal/usecase/community"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CommunityHandler struct {
	svc *community.Service
}

func NewCommunityHandler(svc *community.Service) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

// RegisterPublicRoutes mounts the cached read side. Literal segments are
// registered ahead of :kind/:id so they are not shadowed.
func (h *CommunityHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/categories", h.ListCategories)
	r.Get("/:kind", h.ListPosts)
	r.Get("/:kind/hot", h.HotPosts)
	r.Get("/:kind/:id", h.GetPost)
	r.Get("/:kind/:id/comments", h.ListComments)
}

func (h *CommunityHandler) RegisterRoutes(r fiber.Router, audit func(string) fiber.Handler) {
	if r == nil {
		return
	}

	admin := middleware.RequireRoles(user.RoleAdmin)
	r.Post("/categories", admin, audit("category.create"), h.CreateCategory)
	r.Put("/categories/:id", admin, audit("category.update"), h.UpdateCategory)
	r.Delete("/categories/:id", admin, audit("category.delete"), h.DeleteCategory)

	r.Delete("/comments/:id", h.DeleteComment)
	r.Post("/questions/:id/accept/:commentId", h.AcceptAnswer)

	r.Post("/:kind", h.CreatePost)
	r.Put("/:kind/:id", h.UpdatePost)
	r.Delete("/:kind/:id", audit("community.post.delete"), h.DeletePost)
	r.Post("/:kind/:id/comments", h.CreateComment)
	r.Post("/:kind/:id/like", h.react(domaincommunity.ReactionLike, true))
	r.Delete("/:kind/:id/like", h.react(domaincommunity.ReactionLike, false))
	r.Post("/:kind/:id/favorite", h.react(domaincommunity.ReactionFavorite, true))
	r.Delete("/:kind/:id/favorite", h.react(domaincommunity.ReactionFavorite, false))
}

func (h *CommunityHandler) RegisterMeRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/favorites", h.ListFavorites)
}

func (h *CommunityHandler) ListCategories(c fiber.Ctx) error {
	items, err := h.svc.ListCategories(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CommunityHandler) CreateCategory(c fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cat, err := h.svc.CreateCategory(c.Context(), categoryInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, cat)
}

func (h *CommunityHandler) UpdateCategory(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cat, err := h.svc.UpdateCategory(c.Context(), id, categoryInput(req))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, cat)
}

func (h *CommunityHandler) DeleteCategory(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteCategory(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CommunityHandler) ListPosts(c fiber.Ctx) error {
	kind, err := contentKind(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	f := domaincommunity.ListFilter{Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := parseUUID("category_id", raw)
		if err != nil {
			return err
		}
		f.CategoryID = &id
	}

	items, err := h.svc.ListPosts(c.Context(), kind, f)
	if err != nil {
		return err
	}
	return response.Paged(c, items, limit, offset)
}

func (h *CommunityHandler) HotPosts(c fiber.Ctx) error {
	kind, err := contentKind(c)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", 10)
	if err != nil {
		return middleware.BadRequest("limit must be an integer")
	}

	items, err := h.svc.HotPosts(c.Context(), kind, limit)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CommunityHandler) GetPost(c fiber.Ctx) error {
	kind, id, err := kindAndID(c)
	if err != nil {
		return err
	}

	p, err := h.svc.GetPost(c.Context(), kind, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *CommunityHandler) CreatePost(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	kind, err := contentKind(c)
	if err != nil {
		return err
	}
	in, err := h.postInput(c)
	if err != nil {
		return err
	}

	p, err := h.svc.CreatePost(c.Context(), actor, kind, in)
	if err != nil {
		return err
	}
	return response.Created(c, p)
}

func (h *CommunityHandler) UpdatePost(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	kind, id, err := kindAndID(c)
	if err != nil {
		return err
	}
	in, err := h.postUpdateInput(c)
	if err != nil {
		return err
	}

	p, err := h.svc.UpdatePost(c.Context(), actor, kind, id, in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *CommunityHandler) DeletePost(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	kind, id, err := kindAndID(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeletePost(c.Context(), actor, kind, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CommunityHandler) AcceptAnswer(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	questionID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		return err
	}

	q, err := h.svc.AcceptAnswer(c.Context(), actor, questionID, commentID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, q)
}

func (h *CommunityHandler) ListComments(c fiber.Ctx) error {
	kind, id, err := kindAndID(c)
	if err != nil {
		return err
	}

	tree, err := h.svc.ListComments(c.Context(), kind, id)
	if err != nil {
		return err
	}
	if tree == nil {
		tree = []*domaincommunity.Comment{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, tree)
}

func (h *CommunityHandler) CreateComment(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	kind, id, err := kindAndID(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	in := community.CommentInput{Content: req.Content}
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, err := parseUUID("parent_id", *req.ParentID)
		if err != nil {
			return err
		}
		in.ParentID = &parentID
	}

	comment, err := h.svc.CreateComment(c.Context(), actor, kind, id, in)
	if err != nil {
		return err
	}
	return response.Created(c, comment)
}

func (h *CommunityHandler) DeleteComment(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteComment(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CommunityHandler) react(reaction domaincommunity.ReactionKind, add bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, err := currentActor(c)
		if err != nil {
			return err
		}
		kind, id, err := kindAndID(c)
		if err != nil {
			return err
		}

		if err := h.svc.React(c.Context(), actor, kind, id, reaction, add); err != nil {
			return err
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
	}
}

func (h *CommunityHandler) ListFavorites(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.svc.ListFavorites(c.Context(), actor.ID, limit, offset)
	if err != nil {
		return err
	}
	return response.Paged(c, items, limit, offset)
}

func (h *CommunityHandler) postInput(c fiber.Ctx) (community.PostInput, error) {
	var req dto.PostRequest
	if err := bindBody(c, &req); err != nil {
		return community.PostInput{}, err
	}
	categoryID, err := parseUUID("category_id", req.CategoryID)
	if err != nil {
		return community.PostInput{}, err
	}
	return community.PostInput{CategoryID: categoryID, Title: req.Title, Content: req.Content}, nil
}

func (h *CommunityHandler) postUpdateInput(c fiber.Ctx) (community.PostInput, error) {
	var req dto.PostUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return community.PostInput{}, err
	}
	in := community.PostInput{Title: req.Title, Content: req.Content}
	if req.CategoryID == "" {
		return in, nil
	}
	categoryID, err := parseUUID("category_id", req.CategoryID)
	if err != nil {
		return community.PostInput{}, err
	}
	in.CategoryID = categoryID
	return in, nil
}

func kindAndID(c fiber.Ctx) (domaincommunity.ContentType, uuid.UUID, error) {
	kind, err := contentKind(c)
	if err != nil {
		return "", uuid.Nil, err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return "", uuid.Nil, err
	}
	return kind, id, nil
}

func categoryInput(req dto.CategoryRequest) community.CategoryInput {
	return community.CategoryInput{Name: req.Name, Description: req.Description, SortOrder: req.SortOrder}
}
