package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/repository"
	"github.com/timmy/tubevault/internal/youtube"
)

var errInjected = errors.New("injected failure")

type fakeDocStore struct {
	mu         sync.Mutex
	videos     map[string]domain.Video
	inserts    int
	closes     int
	connectErr error
	insertErr  error
	deleteErr  error
	listErr    error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{videos: make(map[string]domain.Video)}
}

func (s *fakeDocStore) Connect(ctx context.Context) (repository.DocumentConn, error) {
	if s.connectErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, s.connectErr)
	}
	return &fakeDocConn{s: s}, nil
}

func (s *fakeDocStore) get(id string) (domain.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	return v, ok
}

func (s *fakeDocStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.videos)
}

type fakeDocConn struct{ s *fakeDocStore }

func (c *fakeDocConn) Insert(ctx context.Context, v *domain.Video) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.insertErr != nil {
		return c.s.insertErr
	}
	if _, ok := c.s.videos[v.VideoID]; ok {
		return domain.ErrAlreadyExists
	}
	c.s.inserts++
	c.s.videos[v.VideoID] = *v
	return nil
}

func (c *fakeDocConn) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := c.s.get(id)
	return ok, nil
}

func (c *fakeDocConn) List(ctx context.Context) ([]domain.Video, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.listErr != nil {
		return nil, c.s.listErr
	}
	out := make([]domain.Video, 0, len(c.s.videos))
	for _, v := range c.s.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out, nil
}

func (c *fakeDocConn) Delete(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.deleteErr != nil {
		return c.s.deleteErr
	}
	if _, ok := c.s.videos[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(c.s.videos, id)
	return nil
}

func (c *fakeDocConn) Close(ctx context.Context) error {
	c.s.mu.Lock()
	c.s.closes++
	c.s.mu.Unlock()
	return nil
}

type fakeVectorStore struct {
	mu         sync.Mutex
	points     map[string]*domain.VideoPayload
	connectErr error
	upsertErr  error
	deleteErr  error
	lastTopK   int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{points: make(map[string]*domain.VideoPayload)}
}

func (s *fakeVectorStore) Connect(ctx context.Context) (repository.VectorIndex, error) {
	if s.connectErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, s.connectErr)
	}
	return s, nil
}

func (s *fakeVectorStore) Upsert(ctx context.Context, id string, vec []float32, p *domain.VideoPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.points[id] = p
	return nil
}

func (s *fakeVectorStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.points, id)
	return nil
}

func (s *fakeVectorStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.points[id]
	return ok, nil
}

func (s *fakeVectorStore) Search(ctx context.Context, vec []float32, topK int) ([]repository.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTopK = topK
	ids := make([]string, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []repository.SearchResult
	for i, id := range ids {
		if i == topK {
			break
		}
		out = append(out, repository.SearchResult{VideoID: id, Score: 1 - float32(i)/10, Payload: s.points[id]})
	}
	return out, nil
}

func (s *fakeVectorStore) has(id string) bool {
	ok, _ := s.Exists(context.Background(), id)
	return ok
}

type fakeMetadata struct{}

func (fakeMetadata) Fetch(ctx context.Context, url string) (*youtube.Metadata, error) {
	id, err := youtube.VideoID(url)
	if err != nil {
		return nil, err
	}
	return &youtube.Metadata{
		Title:       "Tour of " + id,
		Thumbnail:   youtube.ThumbnailURL(id),
		Description: "Coastal Realty",
	}, nil
}

type fakeTranscripts map[string]string

func (f fakeTranscripts) Fetch(ctx context.Context, id string) string {
	return f[id]
}

type fakeEmbedder struct{ err error }

func (e fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 0, 1}, nil
}
func (e fakeEmbedder) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	return e.Embed(ctx, q)
}
func (fakeEmbedder) GetModel() string { return "fake" }
func (fakeEmbedder) Dimensions() int  { return 3 }

type fakeTextGen struct{ failDescription bool }

func (fakeTextGen) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	return "Title: " + strings.Fields(transcript)[0], nil
}

func (g fakeTextGen) GenerateDescription(ctx context.Context, transcript string) (string, error) {
	if g.failDescription {
		return "", fmt.Errorf("%w: quota", domain.ErrUpstream)
	}
	return "About " + transcript, nil
}

type harness struct {
	docs    *fakeDocStore
	vectors *fakeVectorStore
	svc     *VideoService
}

func newHarness(transcripts fakeTranscripts) *harness {
	docs := newFakeDocStore()
	vectors := newFakeVectorStore()
	fetcher := NewVideoFetcher(fakeMetadata{}, transcripts)
	return &harness{
		docs:    docs,
		vectors: vectors,
		svc: NewVideoService(
			NewDocumentClient(docs, fetcher),
			NewVectorClient(vectors, fetcher, fakeEmbedder{}),
			fetcher,
			fakeTextGen{},
		),
	}
}
