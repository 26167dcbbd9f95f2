package community

import (
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTopic    ContentType = "TOPIC"
	ContentQuestion ContentType = "QUESTION"
)

func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(s) {
	case ContentTopic, ContentQuestion:
		return ContentType(s), true
	}
	return "", false
}

type ReactionKind string

const (
	ReactionLike     ReactionKind = "LIKE"
	ReactionFavorite ReactionKind = "FAVORITE"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post is the shared shape of topics and questions.
type Post struct {
	ID                uuid.UUID   `json:"id"`
	Type              ContentType `json:"type"`
	CategoryID        uuid.UUID   `json:"category_id"`
	AuthorID          uuid.UUID   `json:"author_id"`
	AuthorName        string      `json:"author_name"`
	Title             string      `json:"title"`
	Slug              string      `json:"slug,omitempty"`
	Content           string      `json:"content"`
	LikeCount         int         `json:"like_count"`
	FavoriteCount     int         `json:"favorite_count"`
	CommentCount      int         `json:"comment_count"`
	Solved            bool        `json:"solved"`
	AcceptedCommentID *uuid.UUID  `json:"accepted_comment_id,omitempty"`
	Deleted           bool        `json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type Comment struct {
	ID          uuid.UUID   `json:"id"`
	ContentType ContentType `json:"content_type"`
	ContentID   uuid.UUID   `json:"content_id"`
	ParentID    *uuid.UUID  `json:"parent_id,omitempty"`
	AuthorID    uuid.UUID   `json:"author_id"`
	AuthorName  string      `json:"author_name"`
	Content     string      `json:"content"`
	Deleted     bool        `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	Replies     []*Comment  `json:"replies,omitempty"`
}

type Favorite struct {
	ContentType ContentType `json:"content_type"`
	ContentID   uuid.UUID   `json:"content_id"`
	Title       string      `json:"title"`
	CreatedAt   time.Time   `json:"created_at"`
}

type ListFilter struct {
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// BuildTree nests a flat, creation-ordered comment list by parent id.
// Comments whose parent is missing (deleted) are promoted to the root.
func BuildTree(flat []Comment) []*Comment {
	byID := make(map[uuid.UUID]*Comment, len(flat))
	nodes := make([]*Comment, 0, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = nil
		n := &c
		byID[c.ID] = n
		nodes = append(nodes, n)
	}

	roots := make([]*Comment, 0)
	for _, n := range nodes {
		if n.ParentID != nil {
			if p, ok := byID[*n.ParentID]; ok && p != n {
				p.Replies = append(p.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
