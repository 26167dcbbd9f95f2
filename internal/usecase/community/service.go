package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"unimarket/internal/domain"
	"unimarket/internal/domain/achievement"
	"unimarket/internal/domain/community"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/pkg/text"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound   = domain.NotFound("Category not found")
	ErrPostNotFound       = domain.NotFound("Post not found")
	ErrCommentNotFound    = domain.NotFound("Comment not found")
	ErrNotAuthor          = domain.Forbidden("Only the author can do this")
	ErrForeignParent      = domain.Rule("Parent comment belongs to different content")
	ErrForeignAnswer      = domain.Rule("Comment does not answer this question")
	ErrAlreadySolved      = domain.Rule("Question already has an accepted answer")
	ErrEmptyContent       = domain.Rule("Content must not be empty")
	ErrUnknownReaction    = domain.Rule("Unknown reaction")
	ErrUnknownContentType = domain.Rule("Unknown content type")
)

const (
	EventCommentReply   = "comment_reply"
	EventAnswerAccepted = "answer_accepted"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type Notifier interface {
	Notify(userID uuid.UUID, eventType string, data any)
}

type Awarder interface {
	AwardQuietly(ctx context.Context, userID uuid.UUID, code string)
}

type CategoryInput struct {
	Name        string
	Description string
	SortOrder   int
}

type PostInput struct {
	CategoryID uuid.UUID
	Title      string
	Content    string
}

type CommentInput struct {
	Content  string
	ParentID *uuid.UUID
}

type Repositories struct {
	Categories repository.CategoryRepository
	Posts      repository.PostRepository
	Comments   repository.CommentRepository
	Reactions  repository.ReactionRepository
}

type Service struct {
	categories repository.CategoryRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	reactions  repository.ReactionRepository

	cache    Cache
	notifier Notifier
	awards   Awarder
	logger   logger.Logger
}

// NewService wires the forum. cache, notifier and awards may be nil.
func NewService(repos Repositories, cache Cache, notifier Notifier, awards Awarder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		categories: repos.Categories,
		posts:      repos.Posts,
		comments:   repos.Comments,
		reactions:  repos.Reactions,
		cache:      cache,
		notifier:   notifier,
		awards:     awards,
		logger:     log,
	}
}

// Categories

func (s *Service) ListCategories(ctx context.Context) ([]community.Category, error) {
	return readThrough(ctx, s, CategoryListKey(), CategoryListTTL, func() ([]community.Category, error) {
		out, err := s.categories.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		return out, nil
	})
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (community.Category, error) {
	c := community.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: text.Plain(in.Description),
		SortOrder:   in.SortOrder,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return community.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx, []string{CategoryListKey()})
	return s.getCategory(ctx, c.ID)
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (community.Category, error) {
	c, err := s.getCategory(ctx, id)
	if err != nil {
		return community.Category{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	c.Description = text.Plain(in.Description)
	c.SortOrder = in.SortOrder
	if err := s.categories.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return community.Category{}, ErrCategoryNotFound
		}
		return community.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx, []string{CategoryListKey()})
	return s.getCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx, []string{CategoryListKey()},
		ListPattern(community.ContentTopic), ListPattern(community.ContentQuestion))
	return nil
}

func (s *Service) getCategory(ctx context.Context, id uuid.UUID) (community.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return community.Category{}, ErrCategoryNotFound
		}
		return community.Category{}, fmt.Errorf("load category: %w", err)
	}
	return c, nil
}

// Topics and questions

func (s *Service) ListPosts(ctx context.Context, kind community.ContentType, f community.ListFilter) ([]community.Post, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	f.Limit, f.Offset = listPage(f.Limit, f.Offset)
	return readThrough(ctx, s, ListKey(kind, f.CategoryID, f.Limit, f.Offset), ListTTL, func() ([]community.Post, error) {
		out, err := s.posts.List(ctx, kind, f)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		return out, nil
	})
}

func (s *Service) HotPosts(ctx context.Context, kind community.ContentType, limit int) ([]community.Post, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	limit = hotLimit(limit)
	return readThrough(ctx, s, HotKey(kind, limit), HotTTL, func() ([]community.Post, error) {
		out, err := s.posts.ListHot(ctx, kind, limit)
		if err != nil {
			return nil, fmt.Errorf("list hot posts: %w", err)
		}
		return out, nil
	})
}

func (s *Service) GetPost(ctx context.Context, kind community.ContentType, id uuid.UUID) (community.Post, error) {
	if err := checkKind(kind); err != nil {
		return community.Post{}, err
	}
	return readThrough(ctx, s, DetailKey(kind, id), DetailTTL, func() (community.Post, error) {
		return s.loadPost(ctx, kind, id)
	})
}

func (s *Service) CreatePost(ctx context.Context, actor user.Actor, kind community.ContentType, in PostInput) (community.Post, error) {
	if err := checkKind(kind); err != nil {
		return community.Post{}, err
	}
	if _, err := s.getCategory(ctx, in.CategoryID); err != nil {
		return community.Post{}, err
	}
	p := community.Post{
		ID:         uuid.New(),
		Type:       kind,
		CategoryID: in.CategoryID,
		AuthorID:   actor.ID,
	}
	if err := applyPostInput(&p, in); err != nil {
		return community.Post{}, err
	}
	if kind == community.ContentTopic {
		p.Slug = text.UniqueSlug(p.Title)
	}
	if err := s.posts.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return community.Post{}, ErrCategoryNotFound
		}
		return community.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.invalidate(ctx, nil, ListPattern(kind), HotPattern(kind))
	return s.loadPost(ctx, kind, p.ID)
}

func (s *Service) UpdatePost(ctx context.Context, actor user.Actor, kind community.ContentType, id uuid.UUID, in PostInput) (community.Post, error) {
	if err := checkKind(kind); err != nil {
		return community.Post{}, err
	}
	p, err := s.loadPost(ctx, kind, id)
	if err != nil {
		return community.Post{}, err
	}
	if p.AuthorID != actor.ID {
		return community.Post{}, ErrNotAuthor
	}
	if in.CategoryID == uuid.Nil {
		in.CategoryID = p.CategoryID
	}
	if in.CategoryID != p.CategoryID {
		if _, err := s.getCategory(ctx, in.CategoryID); err != nil {
			return community.Post{}, err
		}
		p.CategoryID = in.CategoryID
	}
	titleBefore := p.Title
	if err := applyPostInput(&p, in); err != nil {
		return community.Post{}, err
	}
	if kind == community.ContentTopic && p.Title != titleBefore {
		p.Slug = text.UniqueSlug(p.Title)
	}
	if err := s.posts.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			return community.Post{}, ErrPostNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return community.Post{}, ErrCategoryNotFound
		}
		return community.Post{}, fmt.Errorf("update post: %w", err)
	}
	s.invalidatePost(ctx, kind, id)
	return s.loadPost(ctx, kind, id)
}

func (s *Service) DeletePost(ctx context.Context, actor user.Actor, kind community.ContentType, id uuid.UUID) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	p, err := s.loadPost(ctx, kind, id)
	if err != nil {
		return err
	}
	if p.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrNotAuthor
	}
	if err := s.posts.SoftDelete(ctx, kind, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	s.invalidatePost(ctx, kind, id)
	return nil
}

// AcceptAnswer marks commentID as the solution of a question. Only the
// question author may accept, and only once.
func (s *Service) AcceptAnswer(ctx context.Context, actor user.Actor, questionID, commentID uuid.UUID) (community.Post, error) {
	q, err := s.loadPost(ctx, community.ContentQuestion, questionID)
	if err != nil {
		return community.Post{}, err
	}
	if q.AuthorID != actor.ID {
		return community.Post{}, ErrNotAuthor
	}
	if q.Solved {
		return community.Post{}, ErrAlreadySolved
	}
	c, err := s.loadComment(ctx, commentID)
	if err != nil {
		return community.Post{}, err
	}
	if c.ContentType != community.ContentQuestion || c.ContentID != questionID {
		return community.Post{}, ErrForeignAnswer
	}

	if err := s.posts.AcceptAnswer(ctx, questionID, commentID); err != nil {
		if errors.Is(err, repository.ErrAlreadySolved) {
			return community.Post{}, ErrAlreadySolved
		}
		return community.Post{}, fmt.Errorf("accept answer: %w", err)
	}
	s.invalidatePost(ctx, community.ContentQuestion, questionID)

	if c.AuthorID != actor.ID {
		s.notify(c.AuthorID, EventAnswerAccepted, map[string]any{
			"question_id": questionID,
			"comment_id":  commentID,
			"title":       q.Title,
		})
	}
	if s.awards != nil {
		if n, err := s.comments.CountAcceptedByAuthor(ctx, c.AuthorID); err == nil && n == 1 {
			s.awards.AwardQuietly(ctx, c.AuthorID, achievement.CodeFirstAnswerAccepted)
		}
	}
	return s.loadPost(ctx, community.ContentQuestion, questionID)
}

// Comments

// ListComments returns the comment tree of a topic or question.
func (s *Service) ListComments(ctx context.Context, kind community.ContentType, contentID uuid.UUID) ([]*community.Comment, error) {
	if _, err := s.GetPost(ctx, kind, contentID); err != nil {
		return nil, err
	}
	return readThrough(ctx, s, CommentListKey(kind, contentID), CommentListTTL, func() ([]*community.Comment, error) {
		flat, err := s.comments.ListByContent(ctx, kind, contentID)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		return community.BuildTree(flat), nil
	})
}

func (s *Service) CreateComment(ctx context.Context, actor user.Actor, kind community.ContentType, contentID uuid.UUID, in CommentInput) (community.Comment, error) {
	if err := checkKind(kind); err != nil {
		return community.Comment{}, err
	}
	content := text.Rich(in.Content)
	if content == "" {
		return community.Comment{}, ErrEmptyContent
	}
	post, err := s.loadPost(ctx, kind, contentID)
	if err != nil {
		return community.Comment{}, err
	}

	var parent *community.Comment
	if in.ParentID != nil {
		pc, err := s.loadComment(ctx, *in.ParentID)
		if err != nil {
			return community.Comment{}, err
		}
		if pc.ContentType != kind || pc.ContentID != contentID {
			return community.Comment{}, ErrForeignParent
		}
		parent = &pc
	}

	c := community.Comment{
		ID:          uuid.New(),
		ContentType: kind,
		ContentID:   contentID,
		ParentID:    in.ParentID,
		AuthorID:    actor.ID,
		Content:     content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			return community.Comment{}, ErrPostNotFound
		case errors.Is(err, repository.ErrCommentNotFound):
			return community.Comment{}, ErrCommentNotFound
		}
		return community.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	s.invalidatePost(ctx, kind, contentID)

	created, err := s.loadComment(ctx, c.ID)
	if err != nil {
		return community.Comment{}, err
	}
	if parent != nil && parent.AuthorID != actor.ID {
		s.notify(parent.AuthorID, EventCommentReply, map[string]any{
			"content_type": kind,
			"content_id":   contentID,
			"title":        post.Title,
			"comment_id":   created.ID,
			"parent_id":    parent.ID,
			"author":       created.AuthorName,
		})
	}
	return created, nil
}

func (s *Service) DeleteComment(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	c, err := s.loadComment(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrNotAuthor
	}
	if err := s.comments.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	s.invalidatePost(ctx, c.ContentType, c.ContentID)
	return nil
}

// Reactions

// React adds or removes a like/favorite. Repeating the same call is a no-op.
func (s *Service) React(ctx context.Context, actor user.Actor, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind, add bool) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if reaction != community.ReactionLike && reaction != community.ReactionFavorite {
		return ErrUnknownReaction
	}
	if _, err := s.loadPost(ctx, kind, contentID); err != nil {
		return err
	}

	var (
		changed bool
		err     error
	)
	if add {
		changed, err = s.reactions.Add(ctx, actor.ID, kind, contentID, reaction)
	} else {
		changed, err = s.reactions.Remove(ctx, actor.ID, kind, contentID, reaction)
	}
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("update reaction: %w", err)
	}
	if changed {
		s.invalidate(ctx, []string{DetailKey(kind, contentID)}, ListPattern(kind), HotPattern(kind))
	}
	return nil
}

func (s *Service) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]community.Favorite, error) {
	limit, offset = listPage(limit, offset)
	out, err := s.reactions.ListFavorites(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

// helpers

func (s *Service) loadPost(ctx context.Context, kind community.ContentType, id uuid.UUID) (community.Post, error) {
	p, err := s.posts.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return community.Post{}, ErrPostNotFound
		}
		return community.Post{}, fmt.Errorf("load post: %w", err)
	}
	return p, nil
}

func (s *Service) loadComment(ctx context.Context, id uuid.UUID) (community.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return community.Comment{}, ErrCommentNotFound
		}
		return community.Comment{}, fmt.Errorf("load comment: %w", err)
	}
	return c, nil
}

// invalidatePost drops every cached view a post mutation can change.
func (s *Service) invalidatePost(ctx context.Context, kind community.ContentType, id uuid.UUID) {
	s.invalidate(ctx,
		[]string{DetailKey(kind, id), CommentListKey(kind, id)},
		ListPattern(kind), HotPattern(kind),
	)
}

// invalidate runs after the database write. Failures are logged and the
// stale entry ages out with its TTL.
func (s *Service) invalidate(ctx context.Context, keys []string, patterns ...string) {
	if s.cache == nil {
		return
	}
	if len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("cache invalidation failed", logger.Strings("keys", keys), logger.Error(err))
		}
	}
	for _, p := range patterns {
		if err := s.cache.DeleteByPattern(ctx, p); err != nil {
			s.logger.Warn("cache invalidation failed", logger.String("pattern", p), logger.Error(err))
		}
	}
}

func (s *Service) notify(userID uuid.UUID, eventType string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, eventType, data)
}

func readThrough[T any](ctx context.Context, s *Service, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, v, ttl); err != nil {
			s.logger.Warn("cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return v, nil
}

func checkKind(kind community.ContentType) error {
	if _, ok := community.ParseContentType(string(kind)); !ok {
		return ErrUnknownContentType
	}
	return nil
}

func applyPostInput(p *community.Post, in PostInput) error {
	if title := text.Plain(in.Title); title != "" {
		p.Title = title
	}
	if content := text.Rich(in.Content); content != "" {
		p.Content = content
	}
	if p.Title == "" || p.Content == "" {
		return ErrEmptyContent
	}
	return nil
}
