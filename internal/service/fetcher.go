package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/youtube"
)

// MetadataSource looks up public video metadata.
type MetadataSource interface {
	Fetch(ctx context.Context, videoURL string) (*youtube.Metadata, error)
}

// TranscriptSource returns a video transcript, "" when unavailable.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) string
}

// VideoFetcher gathers everything needed to store a video.
type VideoFetcher struct {
	metadata    MetadataSource
	transcripts TranscriptSource
}

func NewVideoFetcher(metadata MetadataSource, transcripts TranscriptSource) *VideoFetcher {
	return &VideoFetcher{metadata: metadata, transcripts: transcripts}
}

// Prepare resolves the video id and fetches metadata and transcript
// concurrently. It fails only on a malformed URL.
func (f *VideoFetcher) Prepare(ctx context.Context, videoURL string) (*domain.VideoSource, error) {
	videoID, err := youtube.VideoID(videoURL)
	if err != nil {
		return nil, err
	}

	var (
		meta       *youtube.Metadata
		transcript string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta, err = f.metadata.Fetch(gctx, videoURL)
		return err
	})
	g.Go(func() error {
		transcript = f.transcripts.Fetch(gctx, videoID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.VideoSource{
		VideoID:          videoID,
		URL:              videoURL,
		Title:            meta.Title,
		Thumbnail:        meta.Thumbnail,
		Description:      meta.Description,
		Transcript:       transcript,
		MetadataDegraded: meta.Degraded,
	}, nil
}

// Transcript fetches only the transcript of a video URL.
func (f *VideoFetcher) Transcript(ctx context.Context, videoURL string) (videoID, transcript string, err error) {
	videoID, err = youtube.VideoID(videoURL)
	if err != nil {
		return "", "", err
	}
	return videoID, f.transcripts.Fetch(ctx, videoID), nil
}
