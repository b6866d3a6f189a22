package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubevault/internal/api/middleware"
	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/service"
)

// VideoService is the part of the video coordinator the HTTP layer uses.
type VideoService interface {
	AddVideo(ctx context.Context, url string) (*domain.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
	ListVideos(ctx context.Context) []domain.VideoSummary
	Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error)
	GenerateContent(ctx context.Context, url string) (*service.GeneratedContent, error)
}

const internalErrorMessage = "Internal server error"

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// abortWithInternal logs err and answers with a generic 500 body.
func abortWithInternal(c *gin.Context, err error, action string) {
	middleware.GetLogger(c).WithError(err).Errorf("%s failed", action)
	abortWithDetail(c, http.StatusInternalServerError, internalErrorMessage)
}
