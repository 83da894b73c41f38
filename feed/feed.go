// Package feed derives the rendered feed from raw post snapshots.
package feed

import (
	"regexp"
	"strings"

	"aurie/models"
)

const wordsPerMinute = 200

var tagRe = regexp.MustCompile(`<[^>]+>`)

// FilterByCategory returns the posts whose category equals the selection.
// An empty selection is the identity filter.
func FilterByCategory(posts []models.Post, category string) []models.Post {
	if category == "" {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// StripTags removes HTML tags from post content.
func StripTags(content string) string {
	return tagRe.ReplaceAllString(content, "")
}

// WordCount counts whitespace-separated words in plain text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTime estimates reading minutes for HTML content at 200 words per
// minute, rounded up. Empty content reads in zero minutes.
func ReadTime(content string) int {
	words := WordCount(StripTags(content))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// Preview returns the first n characters of the stripped content.
func Preview(content string, n int) string {
	text := StripTags(content)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
