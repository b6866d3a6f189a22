package domain

import "unicode/utf8"

const (
	// PayloadTypeTranscript tags vectors built from a full video transcript.
	PayloadTypeTranscript = "youtube_transcript"

	// TranscriptPreviewChars is the character budget of the stored preview.
	TranscriptPreviewChars = 500
)

// VideoPayload is the metadata stored alongside each transcript embedding.
type VideoPayload struct {
	VideoID        string `json:"video_id"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Thumbnail      string `json:"thumbnail"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	FullTranscript string `json:"full_transcript"`
	Type           string `json:"type"`
}

// NewVideoPayload builds the vector payload for a fetched video.
func NewVideoPayload(src *VideoSource) *VideoPayload {
	return &VideoPayload{
		VideoID:        src.VideoID,
		Title:          src.Title,
		URL:            src.URL,
		Thumbnail:      src.Thumbnail,
		Description:    src.Description,
		Content:        TruncateRunes(src.Transcript, TranscriptPreviewChars),
		FullTranscript: src.Transcript,
		Type:           PayloadTypeTranscript,
	}
}

// TruncateRunes returns at most n characters of s without splitting a rune.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// SearchHit is one ranked semantic-search match.
type SearchHit struct {
	ID        string  `json:"id"`
	Score     float32 `json:"score"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Thumbnail string  `json:"thumbnail"`
	Snippet   string  `json:"snippet"`
}
