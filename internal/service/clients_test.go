package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/tubevault/internal/domain"
)

func TestDocumentClient_Insert(t *testing.T) {
	h := newHarness(defaultTranscripts())
	ctx := context.Background()

	conn, err := h.svc.docs.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, h.svc.docs.Insert(ctx, conn, urlB))

	video, ok := h.docs.get("bbb222")
	require.True(t, ok)
	assert.Equal(t, "Tour of bbb222", video.Title)
	assert.Equal(t, "https://img.youtube.com/vi/bbb222/maxresdefault.jpg", video.Thumbnail)
	assert.Equal(t, "Coastal Realty", video.Description)
	assert.Equal(t, urlB, video.URL)
	assert.Equal(t, "modern loft downtown with skyline views", video.Transcript)
	assert.False(t, video.CreatedAt.IsZero())

	err = h.svc.docs.Insert(ctx, conn, urlB)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, 1, h.docs.count())
}

func TestDocumentClient_InsertMalformedURL(t *testing.T) {
	h := newHarness(defaultTranscripts())
	ctx := context.Background()

	conn, err := h.svc.docs.Connect(ctx)
	require.NoError(t, err)

	err = h.svc.docs.Insert(ctx, conn, "https://www.youtube.com/feed")
	assert.ErrorIs(t, err, domain.ErrMalformedURL)
	assert.Zero(t, h.docs.count())
}

func TestVectorClient_InsertEmptyTranscript(t *testing.T) {
	h := newHarness(fakeTranscripts{"bbb222": "   "})
	ctx := context.Background()

	idx, err := h.svc.vectors.Connect(ctx)
	require.NoError(t, err)

	err = h.svc.vectors.Insert(ctx, idx, urlB)
	assert.ErrorIs(t, err, domain.ErrEmptyTranscript)
	assert.False(t, h.vectors.has("bbb222"))

	err = h.svc.vectors.Insert(ctx, idx, urlA)
	assert.ErrorIs(t, err, domain.ErrEmptyTranscript)
	assert.False(t, h.vectors.has("aaa111"))
}

func TestVectorClient_InsertStoresPreview(t *testing.T) {
	transcript := strings.Repeat("bright open living room ", 60)
	h := newHarness(fakeTranscripts{"aaa111": transcript})
	ctx := context.Background()

	idx, err := h.svc.vectors.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, h.svc.vectors.Insert(ctx, idx, urlA))

	h.vectors.mu.Lock()
	payload := h.vectors.points["aaa111"]
	h.vectors.mu.Unlock()
	require.NotNil(t, payload)

	assert.Equal(t, domain.TranscriptPreviewChars, utf8.RuneCountInString(payload.Content))
	assert.Equal(t, transcript[:domain.TranscriptPreviewChars], payload.Content)
	assert.Equal(t, transcript, payload.FullTranscript)
	assert.Equal(t, "aaa111", payload.VideoID)
	assert.Equal(t, "Tour of aaa111", payload.Title)
	assert.Equal(t, urlA, payload.URL)
	assert.Equal(t, domain.PayloadTypeTranscript, payload.Type)
}
