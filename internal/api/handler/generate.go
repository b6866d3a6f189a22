package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubevault/internal/domain"
)

// GenerateHandler serves AI-written titles and descriptions.
type GenerateHandler struct {
	videos VideoService
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(videos VideoService) *GenerateHandler {
	return &GenerateHandler{videos: videos}
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	URL string `json:"url" binding:"required"`
}

// Generate handles POST /generate. The video does not need to be stored.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	content, err := h.videos.GenerateContent(c.Request.Context(), req.URL)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMalformedURL):
		abortWithDetail(c, http.StatusBadRequest, "Invalid YouTube URL")
		return
	case errors.Is(err, domain.ErrEmptyTranscript):
		abortWithDetail(c, http.StatusUnprocessableEntity, "No transcript available for this video")
		return
	default:
		abortWithInternal(c, err, "generate content")
		return
	}

	c.JSON(http.StatusOK, content)
}
