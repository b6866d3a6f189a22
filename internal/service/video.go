package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
	"github.com/timmy/tubevault/internal/repository"
	"github.com/timmy/tubevault/internal/youtube"
)

const (
	DefaultTopK = 5
	MaxTopK     = 100
)

// VideoService keeps the document store and the vector index in step.
// The document store is the source of truth.
type VideoService struct {
	docs    *DocumentClient
	vectors *VectorClient
	fetcher *VideoFetcher
	textgen TextGenerator
	locks   *keyedMutex
}

// NewVideoService wires the coordinator. textgen may be nil when content
// generation is not configured.
func NewVideoService(docs *DocumentClient, vectors *VectorClient, fetcher *VideoFetcher, textgen TextGenerator) *VideoService {
	return &VideoService{
		docs:    docs,
		vectors: vectors,
		fetcher: fetcher,
		textgen: textgen,
		locks:   newKeyedMutex(),
	}
}

// connect opens both stores. The returned close releases the document
// handle even if the request was cancelled.
func (s *VideoService) connect(ctx context.Context) (repository.DocumentConn, repository.VectorIndex, func(), error) {
	conn, err := s.docs.Connect(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("document store: %w", err)
	}
	closeConn := func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			logger.CtxWarn(ctx, "Failed to close document store handle: %v", err)
		}
	}

	idx, err := s.vectors.Connect(ctx)
	if err != nil {
		closeConn()
		return nil, nil, nil, fmt.Errorf("vector store: %w", err)
	}
	return conn, idx, closeConn, nil
}

// AddVideo stores a video in both stores. If indexing fails the document
// is removed again; a failed removal yields a *domain.ConsistencyError.
func (s *VideoService) AddVideo(ctx context.Context, url string) (*domain.Video, error) {
	startTime := time.Now()
	ctx = logger.SetOperation(ctx, "add_video")

	conn, idx, closeConn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn()

	videoID, err := youtube.VideoID(url)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetVideoID(ctx, videoID)

	unlock := s.locks.Lock(videoID)
	defer unlock()

	exists, err := s.docs.Exists(ctx, conn, videoID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, videoID)
	}

	src, err := s.fetcher.Prepare(ctx, url)
	if err != nil {
		return nil, err
	}
	if src.MetadataDegraded {
		logger.CtxWarn(ctx, "Storing %s with default metadata", videoID)
	}

	var video *domain.Video
	saga := &Saga{
		Operation: "add video",
		VideoID:   videoID,
		Steps: []Step{
			{
				Name: "document store insert",
				Action: func(ctx context.Context) error {
					var err error
					video, err = s.docs.InsertSource(ctx, conn, src)
					return err
				},
				Compensate: func(ctx context.Context) error {
					return s.docs.Delete(ctx, conn, videoID)
				},
			},
			{
				Name: "vector store insert",
				Action: func(ctx context.Context) error {
					return s.vectors.InsertSource(ctx, idx, src)
				},
			},
		},
	}
	if err := saga.Run(ctx); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{logger.FieldStatus: "added"}).
		WithDuration(time.Since(startTime).Milliseconds()).
		Info(ctx, "Video added: %s", video.Title)
	return video, nil
}

// DeleteVideo removes a video from the document store, then from the index.
// Nothing is re-inserted if the index delete fails; the error is a
// *domain.ConsistencyError and the orphaned vector needs manual cleanup.
func (s *VideoService) DeleteVideo(ctx context.Context, videoID string) error {
	ctx = logger.SetVideoID(logger.SetOperation(ctx, "delete_video"), videoID)

	conn, idx, closeConn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	unlock := s.locks.Lock(videoID)
	defer unlock()

	saga := &Saga{
		Operation: "delete video",
		VideoID:   videoID,
		Steps: []Step{
			{
				Name: "document store delete",
				Action: func(ctx context.Context) error {
					return s.docs.Delete(ctx, conn, videoID)
				},
			},
			{
				Name: "vector store delete",
				Action: func(ctx context.Context) error {
					return s.vectors.Delete(ctx, idx, videoID)
				},
			},
		},
	}
	if err := saga.Run(ctx); err != nil {
		return err
	}

	logger.CtxInfo(ctx, "Video deleted")
	return nil
}

// ListVideos returns all stored videos. Any failure yields an empty list.
func (s *VideoService) ListVideos(ctx context.Context) []domain.VideoSummary {
	conn, err := s.docs.Connect(ctx)
	if err != nil {
		logger.CtxError(ctx, "Failed to connect to document store: %v", err)
		return []domain.VideoSummary{}
	}
	defer conn.Close(context.WithoutCancel(ctx))

	videos := s.docs.ListAll(ctx, conn)
	summaries := make([]domain.VideoSummary, len(videos))
	for i := range videos {
		summaries[i] = videos[i].Summary()
	}
	return summaries
}

// ClampTopK bounds a requested result count to [1, MaxTopK]; zero or
// negative means DefaultTopK.
func ClampTopK(topK int) int {
	switch {
	case topK <= 0:
		return DefaultTopK
	case topK > MaxTopK:
		return MaxTopK
	}
	return topK
}

// Search finds the videos whose transcripts best match query.
func (s *VideoService) Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error) {
	idx, err := s.vectors.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	return s.vectors.Search(ctx, idx, query, ClampTopK(topK))
}

// GeneratedContent is an AI-written title and description for a video.
type GeneratedContent struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GenerateContent writes a title and description from a video's
// transcript. Generation failures become fallback strings; a missing
// transcript is domain.ErrEmptyTranscript.
func (s *VideoService) GenerateContent(ctx context.Context, url string) (*GeneratedContent, error) {
	if s.textgen == nil {
		return nil, fmt.Errorf("%w: text generation is not configured", domain.ErrUpstream)
	}

	videoID, transcript, err := s.fetcher.Transcript(ctx, url)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyTranscript, videoID)
	}

	title, description, errs := GenerateWithFallback(ctx, s.textgen, transcript)
	for _, err := range errs {
		logger.CtxWarn(ctx, "Generation for %s fell back to default text: %v", videoID, err)
	}
	return &GeneratedContent{VideoID: videoID, Title: title, Description: description}, nil
}

// ReconcileReport summarizes a Reconcile pass.
type ReconcileReport struct {
	Checked     int
	Rebuilt     []string
	Unindexable []string
	Failed      map[string]error
}

// Reconcile re-indexes documents that have no vector, using the stored
// transcript. Documents without a transcript are reported, not indexed.
func (s *VideoService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	ctx = logger.SetOperation(ctx, "reconcile")

	conn, idx, closeConn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn()

	videos, err := conn.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Failed: make(map[string]error)}
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		unlock := s.locks.Lock(v.VideoID)
		err := s.reconcileOne(ctx, idx, &v, report)
		unlock()
		if err != nil {
			report.Failed[v.VideoID] = err
			logger.CtxWarn(ctx, "Failed to re-index %s: %v", v.VideoID, err)
		}
	}
	return report, nil
}

func (s *VideoService) reconcileOne(ctx context.Context, idx repository.VectorIndex, v *domain.Video, report *ReconcileReport) error {
	exists, err := s.vectors.Exists(ctx, idx, v.VideoID)
	if err != nil || exists {
		return err
	}

	src := &domain.VideoSource{
		VideoID:     v.VideoID,
		URL:         v.URL,
		Title:       v.Title,
		Thumbnail:   v.Thumbnail,
		Description: v.Description,
		Transcript:  v.Transcript,
	}
	err = s.vectors.InsertSource(ctx, idx, src)
	if errors.Is(err, domain.ErrEmptyTranscript) {
		report.Unindexable = append(report.Unindexable, v.VideoID)
		return nil
	}
	if err != nil {
		return err
	}
	report.Rebuilt = append(report.Rebuilt, v.VideoID)
	return nil
}
