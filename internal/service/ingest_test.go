package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tubevault/internal/domain"
)

type recordingAdder struct {
	mu    sync.Mutex
	calls []string
}

func (a *recordingAdder) AddVideo(_ context.Context, url string) (*domain.Video, error) {
	a.mu.Lock()
	a.calls = append(a.calls, url)
	a.mu.Unlock()

	switch {
	case strings.HasSuffix(url, "dup"):
		return nil, domain.ErrAlreadyExists
	case strings.HasSuffix(url, "bad"):
		return nil, errors.New("upstream down")
	}
	return &domain.Video{VideoID: url}, nil
}

func TestIngestService_IngestURLs(t *testing.T) {
	adder := &recordingAdder{}
	svc := NewIngestService(adder, &IngestConfig{Workers: 3})

	urls := []string{"a", "b", "c-dup", "d-bad", "e"}
	stats := svc.IngestURLs(context.Background(), urls)

	assert.EqualValues(t, 5, stats.TotalItems)
	assert.EqualValues(t, 5, stats.ProcessedItems)
	assert.EqualValues(t, 3, stats.AddedItems)
	assert.EqualValues(t, 1, stats.SkippedItems)
	assert.EqualValues(t, 1, stats.FailedItems)
	require.Contains(t, stats.Failures, "d-bad")
	assert.ElementsMatch(t, urls, adder.calls)
	assert.False(t, stats.EndTime.Before(stats.StartTime))
}

func TestIngestService_CancelledContext(t *testing.T) {
	adder := &recordingAdder{}
	svc := NewIngestService(adder, &IngestConfig{Workers: 1, RatePerSecond: 1, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := svc.IngestURLs(ctx, []string{"a", "b", "c"})
	assert.EqualValues(t, 3, stats.TotalItems)
	assert.Empty(t, adder.calls)
	assert.Zero(t, stats.AddedItems)
}
