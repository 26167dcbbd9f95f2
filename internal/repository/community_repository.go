package repository

import (
	"context"
	"errors"
	"fmt"

	"unimarket/internal/database"
	"unimarket/internal/domain/community"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrPostNotFound     = errors.New("community post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrAlreadySolved    = errors.New("question already solved")
)

type CategoryRepository interface {
	List(ctx context.Context) ([]community.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (community.Category, error)
	Create(ctx context.Context, c community.Category) error
	Update(ctx context.Context, c community.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// PostRepository serves both topics and questions; the content type picks the table.
type PostRepository interface {
	Create(ctx context.Context, p community.Post) error
	GetByID(ctx context.Context, kind community.ContentType, id uuid.UUID) (community.Post, error)
	List(ctx context.Context, kind community.ContentType, f community.ListFilter) ([]community.Post, error)
	ListHot(ctx context.Context, kind community.ContentType, limit int) ([]community.Post, error)
	Update(ctx context.Context, p community.Post) error
	SoftDelete(ctx context.Context, kind community.ContentType, id uuid.UUID) error
	AcceptAnswer(ctx context.Context, questionID, commentID uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, c community.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (community.Comment, error)
	ListByContent(ctx context.Context, kind community.ContentType, contentID uuid.UUID) ([]community.Comment, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountAcceptedByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
}

type ReactionRepository interface {
	// Add reports whether a new reaction row was created.
	Add(ctx context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]community.Favorite, error)
}

func postTable(kind community.ContentType) (string, error) {
	switch kind {
	case community.ContentTopic:
		return "community_topics", nil
	case community.ContentQuestion:
		return "community_questions", nil
	}
	return "", fmt.Errorf("unknown content type %q", kind)
}

func reactionTable(reaction community.ReactionKind) (table, counter string, err error) {
	switch reaction {
	case community.ReactionLike:
		return "community_likes", "like_count", nil
	case community.ReactionFavorite:
		return "community_favorites", "favorite_count", nil
	}
	return "", "", fmt.Errorf("unknown reaction %q", reaction)
}

type PostgresCategoryRepository struct {
	db database.DB
}

func NewPostgresCategoryRepository(db database.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `id, name, description, sort_order, deleted, created_at, updated_at`

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]community.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM community_categories WHERE deleted = FALSE ORDER BY sort_order ASC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]community.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (community.Category, error) {
	row := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM community_categories WHERE id = $1 AND deleted = FALSE`, id)
	c, err := scanCategory(row)
	if err != nil {
		if isNoRows(err) {
			return community.Category{}, ErrCategoryNotFound
		}
		return community.Category{}, err
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c community.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO community_categories (id, name, description, sort_order) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.SortOrder,
	)
	return err
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c community.Category) error {
	n, err := r.db.Exec(ctx,
		`UPDATE community_categories SET name = $2, description = $3, sort_order = $4, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		c.ID, c.Name, c.Description, c.SortOrder,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE community_categories SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row scanner) (community.Category, error) {
	var c community.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type PostgresPostRepository struct {
	db database.DB
}

func NewPostgresPostRepository(db database.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// postSelect normalizes both tables to the same column list.
func postSelect(kind community.ContentType) (string, error) {
	table, err := postTable(kind)
	if err != nil {
		return "", err
	}
	extra := `'' AS slug, p.solved, p.accepted_comment_id`
	if kind == community.ContentTopic {
		extra = `p.slug, FALSE, NULL::uuid`
	}
	return `SELECT p.id, p.category_id, p.author_id, u.username, p.title, ` + extra + `, p.content,
		p.like_count, p.favorite_count, p.comment_count, p.deleted, p.created_at, p.updated_at
		FROM ` + table + ` p
		JOIN users u ON u.id = p.author_id`, nil
}

func (r *PostgresPostRepository) Create(ctx context.Context, p community.Post) error {
	var err error
	switch p.Type {
	case community.ContentTopic:
		_, err = r.db.Exec(ctx,
			`INSERT INTO community_topics (id, category_id, author_id, title, slug, content) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.CategoryID, p.AuthorID, p.Title, p.Slug, p.Content,
		)
	case community.ContentQuestion:
		_, err = r.db.Exec(ctx,
			`INSERT INTO community_questions (id, category_id, author_id, title, content) VALUES ($1, $2, $3, $4, $5)`,
			p.ID, p.CategoryID, p.AuthorID, p.Title, p.Content,
		)
	default:
		_, err = postTable(p.Type)
	}
	if err != nil && isForeignKeyViolation(err) {
		return ErrCategoryNotFound
	}
	return err
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, kind community.ContentType, id uuid.UUID) (community.Post, error) {
	base, err := postSelect(kind)
	if err != nil {
		return community.Post{}, err
	}
	row := r.db.QueryRow(ctx, base+` WHERE p.id = $1 AND p.deleted = FALSE`, id)
	p, err := scanPost(row, kind)
	if err != nil {
		if isNoRows(err) {
			return community.Post{}, ErrPostNotFound
		}
		return community.Post{}, err
	}
	return p, nil
}

func (r *PostgresPostRepository) List(ctx context.Context, kind community.ContentType, f community.ListFilter) ([]community.Post, error) {
	base, err := postSelect(kind)
	if err != nil {
		return nil, err
	}
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	query := base + ` WHERE p.deleted = FALSE`
	args := []any{}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += ` AND p.category_id = $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY p.created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows, kind)
}

// ListHot ranks by engagement: comments weigh double, ties go to the newest.
func (r *PostgresPostRepository) ListHot(ctx context.Context, kind community.ContentType, limit int) ([]community.Post, error) {
	base, err := postSelect(kind)
	if err != nil {
		return nil, err
	}
	limit, _ = clampPage(limit, 0, 10, 50)

	rows, err := r.db.Query(ctx,
		base+` WHERE p.deleted = FALSE
		 ORDER BY (p.like_count + p.favorite_count + 2 * p.comment_count) DESC, p.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows, kind)
}

func (r *PostgresPostRepository) Update(ctx context.Context, p community.Post) error {
	var (
		n   int64
		err error
	)
	switch p.Type {
	case community.ContentTopic:
		n, err = r.db.Exec(ctx,
			`UPDATE community_topics SET category_id = $2, title = $3, slug = $4, content = $5, updated_at = now()
			 WHERE id = $1 AND deleted = FALSE`,
			p.ID, p.CategoryID, p.Title, p.Slug, p.Content,
		)
	case community.ContentQuestion:
		n, err = r.db.Exec(ctx,
			`UPDATE community_questions SET category_id = $2, title = $3, content = $4, updated_at = now()
			 WHERE id = $1 AND deleted = FALSE`,
			p.ID, p.CategoryID, p.Title, p.Content,
		)
	default:
		_, err = postTable(p.Type)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepository) SoftDelete(ctx context.Context, kind community.ContentType, id uuid.UUID) error {
	table, err := postTable(kind)
	if err != nil {
		return err
	}
	n, err := r.db.Exec(ctx, `UPDATE `+table+` SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepository) AcceptAnswer(ctx context.Context, questionID, commentID uuid.UUID) error {
	n, err := r.db.Exec(ctx,
		`UPDATE community_questions SET solved = TRUE, accepted_comment_id = $2, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE AND solved = FALSE`,
		questionID, commentID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySolved
	}
	return nil
}

func collectPosts(rows database.Rows, kind community.ContentType) ([]community.Post, error) {
	out := make([]community.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPost(row scanner, kind community.ContentType) (community.Post, error) {
	var p community.Post
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug, &p.Solved, &p.AcceptedCommentID, &p.Content,
		&p.LikeCount, &p.FavoriteCount, &p.CommentCount, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Type = kind
	return p, err
}

type PostgresCommentRepository struct {
	db database.DB
}

func NewPostgresCommentRepository(db database.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

const commentSelect = `SELECT c.id, c.content_type, c.content_id, c.parent_id, c.author_id, u.username, c.content, c.deleted, c.created_at
	FROM community_comments c
	JOIN users u ON u.id = c.author_id`

// Create inserts the comment and bumps the parent post's comment_count.
func (r *PostgresCommentRepository) Create(ctx context.Context, c community.Comment) error {
	table, err := postTable(c.ContentType)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE `+table+` SET comment_count = comment_count + 1 WHERE id = $1 AND deleted = FALSE`,
			c.ContentID,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO community_comments (id, content_type, content_id, parent_id, author_id, content)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, string(c.ContentType), c.ContentID, c.ParentID, c.AuthorID, c.Content,
		)
		if err != nil && isForeignKeyViolation(err) {
			return ErrCommentNotFound
		}
		return err
	})
}

func (r *PostgresCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (community.Comment, error) {
	row := r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1 AND c.deleted = FALSE`, id)
	c, err := scanComment(row)
	if err != nil {
		if isNoRows(err) {
			return community.Comment{}, ErrCommentNotFound
		}
		return community.Comment{}, err
	}
	return c, nil
}

func (r *PostgresCommentRepository) ListByContent(ctx context.Context, kind community.ContentType, contentID uuid.UUID) ([]community.Comment, error) {
	rows, err := r.db.Query(ctx,
		commentSelect+` WHERE c.content_type = $1 AND c.content_id = $2 AND c.deleted = FALSE ORDER BY c.created_at ASC`,
		string(kind), contentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]community.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCommentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var kind string
		var contentID uuid.UUID
		row := tx.QueryRow(ctx,
			`UPDATE community_comments SET deleted = TRUE, updated_at = now()
			 WHERE id = $1 AND deleted = FALSE
			 RETURNING content_type, content_id`,
			id,
		)
		if err := row.Scan(&kind, &contentID); err != nil {
			if isNoRows(err) {
				return ErrCommentNotFound
			}
			return err
		}
		table, err := postTable(community.ContentType(kind))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE `+table+` SET comment_count = GREATEST(comment_count - 1, 0) WHERE id = $1`,
			contentID,
		); err != nil {
			return err
		}
		if community.ContentType(kind) != community.ContentQuestion {
			return nil
		}
		// A hidden comment cannot stay the accepted answer.
		_, err = tx.Exec(ctx,
			`UPDATE community_questions SET solved = FALSE, accepted_comment_id = NULL, updated_at = now()
			 WHERE id = $1 AND accepted_comment_id = $2`,
			contentID, id,
		)
		return err
	})
}

func (r *PostgresCommentRepository) CountAcceptedByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM community_questions q
		 JOIN community_comments c ON c.id = q.accepted_comment_id
		 WHERE c.author_id = $1`,
		authorID,
	)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanComment(row scanner) (community.Comment, error) {
	var c community.Comment
	var kind string
	err := row.Scan(&c.ID, &kind, &c.ContentID, &c.ParentID, &c.AuthorID, &c.AuthorName, &c.Content, &c.Deleted, &c.CreatedAt)
	c.ContentType = community.ContentType(kind)
	return c, err
}

type PostgresReactionRepository struct {
	db database.DB
}

func NewPostgresReactionRepository(db database.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) Add(ctx context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind) (bool, error) {
	return r.toggle(ctx, userID, kind, contentID, reaction, true)
}

func (r *PostgresReactionRepository) Remove(ctx context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind) (bool, error) {
	return r.toggle(ctx, userID, kind, contentID, reaction, false)
}

func (r *PostgresReactionRepository) toggle(ctx context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, reaction community.ReactionKind, add bool) (bool, error) {
	posts, err := postTable(kind)
	if err != nil {
		return false, err
	}
	table, counter, err := reactionTable(reaction)
	if err != nil {
		return false, err
	}

	changed := false
	err = database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var n int64
		var err error
		if add {
			n, err = tx.Exec(ctx,
				`INSERT INTO `+table+` (user_id, content_type, content_id) VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, content_type, content_id) DO NOTHING`,
				userID, string(kind), contentID,
			)
		} else {
			n, err = tx.Exec(ctx,
				`DELETE FROM `+table+` WHERE user_id = $1 AND content_type = $2 AND content_id = $3`,
				userID, string(kind), contentID,
			)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		delta := "+ 1"
		if !add {
			delta = "- 1"
		}
		if _, err := tx.Exec(ctx,
			`UPDATE `+posts+` SET `+counter+` = GREATEST(`+counter+` `+delta+`, 0) WHERE id = $1`,
			contentID,
		); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *PostgresReactionRepository) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]community.Favorite, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	rows, err := r.db.Query(ctx,
		`SELECT f.content_type, f.content_id, COALESCE(t.title, q.title, ''), f.created_at
		 FROM community_favorites f
		 LEFT JOIN community_topics t ON f.content_type = 'TOPIC' AND t.id = f.content_id AND t.deleted = FALSE
		 LEFT JOIN community_questions q ON f.content_type = 'QUESTION' AND q.id = f.content_id AND q.deleted = FALSE
		 WHERE f.user_id = $1 AND (t.id IS NOT NULL OR q.id IS NOT NULL)
		 ORDER BY f.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]community.Favorite, 0)
	for rows.Next() {
		var f community.Favorite
		var kind string
		if err := rows.Scan(&kind, &f.ContentID, &f.Title, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.ContentType = community.ContentType(kind)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
