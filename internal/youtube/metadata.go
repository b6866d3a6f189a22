package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/tubevault/internal/logger"
)

// Fallbacks used when oEmbed gives no value for a field.
const (
	DefaultTitle       = "Unknown Title"
	DefaultDescription = "No description available"
)

// Metadata is the public information of a video.
type Metadata struct {
	Title       string
	Thumbnail   string
	Description string

	// Degraded is set when any field fell back to its default.
	Degraded bool
}

// MetadataFetcher looks up video metadata through the oEmbed endpoint.
type MetadataFetcher struct {
	client   *resty.Client
	endpoint string
}

// NewMetadataFetcher creates a fetcher for the given oEmbed endpoint.
func NewMetadataFetcher(endpoint string, timeout time.Duration) *MetadataFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &MetadataFetcher{
		client:   client,
		endpoint: endpoint,
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	AuthorName   string `json:"author_name"`
}

// Fetch returns metadata for a video URL. oEmbed has no description, so the
// channel name stands in for it. Upstream failures never fail the
// call; every missing field is replaced by its default and Degraded is set.
// The only error is a URL with no resolvable video id.
func (f *MetadataFetcher) Fetch(ctx context.Context, videoURL string) (*Metadata, error) {
	videoID, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}

	var body oembedResponse
	if err := f.lookup(ctx, videoURL, &body); err != nil {
		logger.CtxWarn(ctx, "oEmbed lookup failed for %s, using defaults: %v", videoID, err)
	}

	meta := &Metadata{
		Title:       strings.TrimSpace(body.Title),
		Thumbnail:   strings.TrimSpace(body.ThumbnailURL),
		Description: strings.TrimSpace(body.AuthorName),
	}
	if meta.Title == "" {
		meta.Title = DefaultTitle
		meta.Degraded = true
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = ThumbnailURL(videoID)
		meta.Degraded = true
	}
	if meta.Description == "" {
		meta.Description = DefaultDescription
		meta.Degraded = true
	}
	return meta, nil
}

func (f *MetadataFetcher) lookup(ctx context.Context, videoURL string, out *oembedResponse) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    videoURL,
			"format": "json",
		}).
		SetResult(out).
		Get(f.endpoint)
	if err != nil {
		*out = oembedResponse{}
		return fmt.Errorf("failed to call oEmbed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		*out = oembedResponse{}
		return fmt.Errorf("oEmbed error: status %d", resp.StatusCode())
	}
	return nil
}
