package repository

import (
	"context"

	"github.com/timmy/tubevault/internal/domain"
)

// DocumentStore opens handles on the video collection.
type DocumentStore interface {
	// Connect verifies the store is reachable and returns a handle.
	// Failures wrap domain.ErrConnection.
	Connect(ctx context.Context) (DocumentConn, error)
}

// DocumentConn is an open handle on the video collection.
type DocumentConn interface {
	// Insert stores a new record; domain.ErrAlreadyExists on a duplicate id.
	Insert(ctx context.Context, video *domain.Video) error
	Exists(ctx context.Context, videoID string) (bool, error)
	List(ctx context.Context) ([]domain.Video, error)
	// Delete removes a record; domain.ErrNotFound if absent.
	Delete(ctx context.Context, videoID string) error
	Close(ctx context.Context) error
}

// VectorStore opens handles on the transcript vector index.
type VectorStore interface {
	Connect(ctx context.Context) (VectorIndex, error)
}

// VectorIndex is an open handle on the transcript vector index. Points
// are addressed by video id.
type VectorIndex interface {
	Upsert(ctx context.Context, videoID string, vector []float32, payload *domain.VideoPayload) error
	Delete(ctx context.Context, videoID string) error
	Exists(ctx context.Context, videoID string) (bool, error)
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
}

// SearchResult is one scored point returned by the vector index.
type SearchResult struct {
	VideoID string
	Score   float32
	Payload *domain.VideoPayload
}
