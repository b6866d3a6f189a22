package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/service"
)

type stubVideos struct {
	addErr    error
	deleteErr error
	searchErr error
	genErr    error
	list      []domain.VideoSummary

	gotTopK int
}

func (s *stubVideos) AddVideo(_ context.Context, url string) (*domain.Video, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &domain.Video{
		VideoID:    "ABC123",
		Title:      "Tour",
		URL:        url,
		Thumbnail:  "thumb",
		Transcript: "secret transcript",
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (s *stubVideos) DeleteVideo(context.Context, string) error { return s.deleteErr }

func (s *stubVideos) ListVideos(context.Context) []domain.VideoSummary { return s.list }

func (s *stubVideos) Search(_ context.Context, query string, topK int) ([]domain.SearchHit, error) {
	s.gotTopK = topK
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return []domain.SearchHit{{ID: "ABC123", Score: 0.9, Title: query}}, nil
}

func (s *stubVideos) GenerateContent(_ context.Context, _ string) (*service.GeneratedContent, error) {
	if s.genErr != nil {
		return nil, s.genErr
	}
	return &service.GeneratedContent{VideoID: "ABC123", Title: "T", Description: "D"}, nil
}

func newTestRouter(videos *stubVideos) *gin.Engine {
	return SetupRouter(videos, RouterConfig{
		Mode:           "test",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
	})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(&stubVideos{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListVideos_EmptyIsArray(t *testing.T) {
	w := do(t, newTestRouter(&stubVideos{}), http.MethodGet, "/videos", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAddVideo(t *testing.T) {
	w := do(t, newTestRouter(&stubVideos{}), http.MethodPost, "/videos",
		`{"url":"https://www.youtube.com/watch?v=ABC123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ABC123", got["id"])
	assert.Equal(t, "Tour", got["title"])
	assert.NotContains(t, got, "transcript")
}

func TestAddVideo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"missing url", `{}`, nil, http.StatusBadRequest, ""},
		{"bad json", `{"url":`, nil, http.StatusBadRequest, ""},
		{"exists", `{"url":"u"}`, domain.ErrAlreadyExists, http.StatusBadRequest, "Video already exists"},
		{"malformed", `{"url":"u"}`, fmt.Errorf("resolve: %w", domain.ErrMalformedURL), http.StatusBadRequest, "Invalid YouTube URL"},
		{"connection", `{"url":"u"}`, fmt.Errorf("document store: %w", domain.ErrConnection), http.StatusInternalServerError, "Internal server error"},
		{"inconsistent", `{"url":"u"}`, &domain.ConsistencyError{Operation: "add", VideoID: "x", Cause: errors.New("boom")}, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestRouter(&stubVideos{addErr: tt.err}), http.MethodPost, "/videos", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, detail(t, w))
			}
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestDeleteVideo(t *testing.T) {
	w := do(t, newTestRouter(&stubVideos{}), http.MethodDelete, "/videos/ABC123", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ABC123")

	w = do(t, newTestRouter(&stubVideos{deleteErr: fmt.Errorf("delete document: %w", domain.ErrNotFound)}),
		http.MethodDelete, "/videos/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, newTestRouter(&stubVideos{deleteErr: errors.New("qdrant down")}),
		http.MethodDelete, "/videos/ABC123", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", detail(t, w))
}

func TestSearch(t *testing.T) {
	videos := &stubVideos{}
	r := newTestRouter(videos)

	w := do(t, r, http.MethodPost, "/search", `{"query":"pool","top_k":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, videos.gotTopK)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(t, r, http.MethodGet, "/search?q=garden&top_k=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, videos.gotTopK)

	w = do(t, r, http.MethodGet, "/search?q=garden&top_k=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/search?q=%20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, newTestRouter(&stubVideos{searchErr: errors.New("down")}), http.MethodGet, "/search?q=a", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerate(t *testing.T) {
	w := do(t, newTestRouter(&stubVideos{}), http.MethodPost, "/generate", `{"url":"u"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"video_id":"ABC123","title":"T","description":"D"}`, w.Body.String())

	w = do(t, newTestRouter(&stubVideos{genErr: domain.ErrEmptyTranscript}), http.MethodPost, "/generate", `{"url":"u"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&stubVideos{})

	req := httptest.NewRequest(http.MethodOptions, "/videos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
