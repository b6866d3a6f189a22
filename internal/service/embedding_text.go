package service

import (
	"strings"

	"github.com/timmy/tubevault/internal/domain"
)

// maxEmbeddingRunes bounds the request body sent to hosted embedding APIs.
// Every supported model truncates far earlier at the token level.
const maxEmbeddingRunes = 32000

func normalizeWhitespace(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// embeddingText prepares a transcript or query for the embedding model.
func embeddingText(text string) string {
	return domain.TruncateRunes(normalizeWhitespace(text), maxEmbeddingRunes)
}

func snippet(content string) string {
	return domain.TruncateRunes(normalizeWhitespace(content), snippetChars)
}
