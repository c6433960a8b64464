package util

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

// SanitizeText strips markup from user-supplied text and collapses runs of blanks.
// The result is plain text; callers rendering it into HTML must escape it again.
func SanitizeText(s string) string {
	cleaned := html.UnescapeString(strictPolicy.Sanitize(s))
	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Slugify lowercases s and joins alphanumeric runs with "-". It returns
// fallback when nothing is left.
func Slugify(s, fallback string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return fallback
	}
	return slug
}
