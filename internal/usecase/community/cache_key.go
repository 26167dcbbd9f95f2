package community

import (
	"strconv"
	"strings"
	"time"

	"unimarket/internal/domain/community"

	"github.com/google/uuid"
)

const (
	CategoryListTTL = time.Hour
	DetailTTL       = 30 * time.Minute
	ListTTL         = 5 * time.Minute
	HotTTL          = 10 * time.Minute
	CommentListTTL  = 5 * time.Minute
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	defaultHotLimit  = 10
	maxHotLimit      = 50
)

const keyPrefix = "community:"

func CategoryListKey() string {
	return keyPrefix + "category:list"
}

// DetailKey is community:topic:<id> or community:question:<id>.
func DetailKey(kind community.ContentType, id uuid.UUID) string {
	return keyPrefix + kindSegment(kind) + ":" + id.String()
}

func ListKey(kind community.ContentType, categoryID *uuid.UUID, limit, offset int) string {
	cat := "all"
	if categoryID != nil {
		cat = categoryID.String()
	}
	return keyPrefix + kindSegment(kind) + ":list:" + cat + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

func ListPattern(kind community.ContentType) string {
	return keyPrefix + kindSegment(kind) + ":list:*"
}

func HotKey(kind community.ContentType, limit int) string {
	return keyPrefix + kindSegment(kind) + ":hot:" + strconv.Itoa(limit)
}

func HotPattern(kind community.ContentType) string {
	return keyPrefix + kindSegment(kind) + ":hot:*"
}

func CommentListKey(kind community.ContentType, contentID uuid.UUID) string {
	return keyPrefix + "comment:list:" + string(kind) + ":" + contentID.String()
}

func kindSegment(kind community.ContentType) string {
	return strings.ToLower(string(kind))
}

// listPage applies the same bounds as the repository so cache keys line up
// with the rows actually returned.
func listPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func hotLimit(limit int) int {
	if limit <= 0 {
		return defaultHotLimit
	}
	if limit > maxHotLimit {
		return maxHotLimit
	}
	return limit
}
