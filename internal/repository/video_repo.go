package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/timmy/tubevault/internal/domain"
)

// VideoRepository is the SQL document store. All handles share the
// underlying connection pool.
type VideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VideoRepository: repository instance bound to db.
func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Connect pings the database and returns a handle.
func (r *VideoRepository) Connect(ctx context.Context) (DocumentConn, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	return &videoConn{db: r.db}, nil
}

type videoConn struct {
	db *gorm.DB
}

func (c *videoConn) Insert(ctx context.Context, video *domain.Video) error {
	err := c.db.WithContext(ctx).Create(video).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, video.VideoID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert video %s: %w", video.VideoID, err)
	}
	return nil
}

func (c *videoConn) Exists(ctx context.Context, videoID string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("video_id = ?", videoID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up video %s: %w", videoID, err)
	}
	return count > 0, nil
}

// List returns every record, oldest first.
func (c *videoConn) List(ctx context.Context) ([]domain.Video, error) {
	var videos []domain.Video
	if err := c.db.WithContext(ctx).Order("created_at ASC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

func (c *videoConn) Delete(ctx context.Context, videoID string) error {
	result := c.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&domain.Video{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete video %s: %w", videoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, videoID)
	}
	return nil
}

// Close is a no-op; the pool outlives individual handles.
func (c *videoConn) Close(ctx context.Context) error {
	return nil
}
