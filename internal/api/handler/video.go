package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubevault/internal/domain"
)

// VideoHandler serves the video collection endpoints.
type VideoHandler struct {
	videos VideoService
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(videos VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// AddVideoRequest is the body of POST /videos.
type AddVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// ListVideos handles GET /videos. Backend failures yield an empty list.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos := h.videos.ListVideos(c.Request.Context())
	if videos == nil {
		videos = []domain.VideoSummary{}
	}
	c.JSON(http.StatusOK, videos)
}

// AddVideo handles POST /videos.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes 201 with the new record, 400 or 500).
func (h *VideoHandler) AddVideo(c *gin.Context) {
	var req AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	video, err := h.videos.AddVideo(c.Request.Context(), req.URL)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		abortWithDetail(c, http.StatusBadRequest, "Video already exists")
		return
	case errors.Is(err, domain.ErrMalformedURL):
		abortWithDetail(c, http.StatusBadRequest, "Invalid YouTube URL")
		return
	default:
		abortWithInternal(c, err, "add video")
		return
	}

	c.JSON(http.StatusCreated, video.Summary())
}

// DeleteVideo handles DELETE /videos/:video_id.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID := c.Param("video_id")

	err := h.videos.DeleteVideo(c.Request.Context(), videoID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, fmt.Sprintf("Video %s not found", videoID))
		return
	default:
		abortWithInternal(c, err, "delete video")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Video %s successfully deleted from both stores", videoID),
	})
}
