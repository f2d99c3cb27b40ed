// Package weblinks extracts markdown list links from advisor responses.
package weblinks

import (
	"regexp"
	"strings"

	"advisor-chat/internal/domain"
)

// Title and URL may not span lines, so an unterminated entry cannot swallow
// the entry after it.
var linkPattern = regexp.MustCompile(`- \[([^\]\n]+)\]\(([^)\n]+)\)`)

// Parse returns every "- [title](url)" entry in text, in source order.
// Text that does not match, including half-written entries, is skipped.
func Parse(text string) []domain.Link {
	if strings.TrimSpace(text) == "" {
		return []domain.Link{}
	}

	matches := linkPattern.FindAllStringSubmatch(text, -1)
	links := make([]domain.Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, domain.Link{Title: m[1], URL: m[2]})
	}
	return links
}
