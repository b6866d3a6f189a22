package service

import (
	"context"
	"fmt"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/repository"
)

const snippetChars = 120

// VectorClient indexes transcript embeddings and searches them.
type VectorClient struct {
	store    repository.VectorStore
	fetcher  *VideoFetcher
	embedder EmbeddingProvider
}

func NewVectorClient(store repository.VectorStore, fetcher *VideoFetcher, embedder EmbeddingProvider) *VectorClient {
	return &VectorClient{store: store, fetcher: fetcher, embedder: embedder}
}

// Connect opens the index, creating it if needed.
func (c *VectorClient) Connect(ctx context.Context) (repository.VectorIndex, error) {
	return c.store.Connect(ctx)
}

// Insert fetches the video behind url and indexes its transcript.
func (c *VectorClient) Insert(ctx context.Context, idx repository.VectorIndex, url string) error {
	src, err := c.fetcher.Prepare(ctx, url)
	if err != nil {
		return err
	}
	return c.InsertSource(ctx, idx, src)
}

// InsertSource embeds the full transcript and upserts one point. An empty
// transcript fails with domain.ErrEmptyTranscript before the index is
// touched.
func (c *VectorClient) InsertSource(ctx context.Context, idx repository.VectorIndex, src *domain.VideoSource) error {
	text := embeddingText(src.Transcript)
	if text == "" {
		return fmt.Errorf("%w: %s", domain.ErrEmptyTranscript, src.VideoID)
	}

	vector, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed transcript of %s: %w", src.VideoID, err)
	}

	return idx.Upsert(ctx, src.VideoID, vector, domain.NewVideoPayload(src))
}

func (c *VectorClient) Delete(ctx context.Context, idx repository.VectorIndex, videoID string) error {
	return idx.Delete(ctx, videoID)
}

func (c *VectorClient) Exists(ctx context.Context, idx repository.VectorIndex, videoID string) (bool, error) {
	return idx.Exists(ctx, videoID)
}

// Search embeds query with the transcript model and returns the topK
// closest videos, best first.
func (c *VectorClient) Search(ctx context.Context, idx repository.VectorIndex, query string, topK int) ([]domain.SearchHit, error) {
	vector, err := c.embedder.EmbedQuery(ctx, embeddingText(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := idx.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(results))
	for _, r := range results {
		hit := domain.SearchHit{ID: r.VideoID, Score: r.Score}
		if p := r.Payload; p != nil {
			hit.Title = p.Title
			hit.URL = p.URL
			hit.Thumbnail = p.Thumbnail
			hit.Snippet = snippet(p.Content)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
