package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubevault/internal/domain"
)

// SearchHandler serves semantic search over indexed transcripts.
type SearchHandler struct {
	videos VideoService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(videos VideoService) *SearchHandler {
	return &SearchHandler{videos: videos}
}

// SearchRequest is the body of POST /search. TopK is clamped by the service.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// SearchResponse wraps ranked matches.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []domain.SearchHit `json:"results"`
	Total   int                `json:"total"`
}

// Search handles POST /search.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	h.search(c, req)
}

// SearchGet handles GET /search?q=&top_k=.
func (h *SearchHandler) SearchGet(c *gin.Context) {
	req := SearchRequest{Query: c.Query("q")}
	if raw := c.Query("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, "Query parameter 'top_k' must be an integer")
			return
		}
		req.TopK = topK
	}
	h.search(c, req)
}

func (h *SearchHandler) search(c *gin.Context, req SearchRequest) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		abortWithDetail(c, http.StatusBadRequest, "Query is required")
		return
	}

	hits, err := h.videos.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		abortWithInternal(c, err, "search")
		return
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}

	c.JSON(http.StatusOK, SearchResponse{Query: req.Query, Results: hits, Total: len(hits)})
}
