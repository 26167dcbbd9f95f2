// Package text holds the sanitizing and slug helpers shared by usecases that
// store user-authored content.
package text

import (
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Plain strips all markup and surrounding whitespace.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Rich keeps safe formatting markup (links, emphasis, lists, code).
func Rich(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

func Slug(s string) string {
	return slug.Make(s)
}

// UniqueSlug appends a short random suffix, for titles that may repeat.
func UniqueSlug(s string) string {
	base := slug.Make(s)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
