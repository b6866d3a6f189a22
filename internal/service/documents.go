package service

import (
	"context"
	"time"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
	"github.com/timmy/tubevault/internal/repository"
)

// DocumentClient reads and writes video records through explicit store
// handles.
type DocumentClient struct {
	store   repository.DocumentStore
	fetcher *VideoFetcher
	now     func() time.Time
}

func NewDocumentClient(store repository.DocumentStore, fetcher *VideoFetcher) *DocumentClient {
	return &DocumentClient{store: store, fetcher: fetcher, now: time.Now}
}

// Connect opens a document-store handle. The caller closes it.
func (c *DocumentClient) Connect(ctx context.Context) (repository.DocumentConn, error) {
	return c.store.Connect(ctx)
}

// Insert fetches the video behind url and stores its record.
func (c *DocumentClient) Insert(ctx context.Context, conn repository.DocumentConn, url string) error {
	src, err := c.fetcher.Prepare(ctx, url)
	if err != nil {
		return err
	}
	_, err = c.InsertSource(ctx, conn, src)
	return err
}

// InsertSource stores the record of an already fetched video, stamped now.
func (c *DocumentClient) InsertSource(ctx context.Context, conn repository.DocumentConn, src *domain.VideoSource) (*domain.Video, error) {
	video := src.Record(c.now())
	if err := conn.Insert(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (c *DocumentClient) Exists(ctx context.Context, conn repository.DocumentConn, videoID string) (bool, error) {
	return conn.Exists(ctx, videoID)
}

// ListAll returns every record. Failures are logged and yield an empty list.
func (c *DocumentClient) ListAll(ctx context.Context, conn repository.DocumentConn) []domain.Video {
	videos, err := conn.List(ctx)
	if err != nil {
		logger.CtxError(ctx, "Failed to list videos: %v", err)
		return []domain.Video{}
	}
	return videos
}

// Delete removes a record; domain.ErrNotFound if absent.
func (c *DocumentClient) Delete(ctx context.Context, conn repository.DocumentConn, videoID string) error {
	return conn.Delete(ctx, videoID)
}
