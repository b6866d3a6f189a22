// Package youtube resolves video ids and fetches public video data
// (oEmbed metadata and caption transcripts) from YouTube.
package youtube

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/timmy/tubevault/internal/domain"
)

const shortHost = "youtu.be"

// VideoID extracts the video id from a watch URL (?v=ID) or a short
// youtu.be/ID link.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedURL, err)
	}

	var id string
	if strings.EqualFold(u.Hostname(), shortHost) {
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	} else {
		id = u.Query().Get("v")
	}

	if id == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrMalformedURL, rawURL)
	}
	return id, nil
}

// WatchURL returns the canonical watch URL of a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// ThumbnailURL returns the max-resolution thumbnail of a video id.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}
