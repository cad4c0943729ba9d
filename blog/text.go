package blog

import (
	"regexp"
	"strings"

	"folio/constants"

	"github.com/gosimple/slug"
)

var (
	postSlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// ReadingTime estimates minutes to read content at constants.WORDS_PER_MINUTE,
// rounded up. Every post takes at least a minute.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return max(1, (words+constants.WORDS_PER_MINUTE-1)/constants.WORDS_PER_MINUTE)
}

// TagSlug lowercases a tag name and collapses each whitespace run into a
// single hyphen: "Web  Development" -> "web-development".
func TagSlug(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func ValidPostSlug(s string) bool {
	return postSlugPattern.MatchString(s)
}

// SuggestSlug derives a valid post slug from a title, for form hints.
func SuggestSlug(title string) string {
	return slug.Make(title)
}

// ParseTagList splits a comma separated tag field, trimming names and
// dropping empty entries.
func ParseTagList(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
