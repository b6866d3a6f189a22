package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
	"golang.org/x/time/rate"
)

// VideoAdder stores a single video in both stores.
type VideoAdder interface {
	AddVideo(ctx context.Context, url string) (*domain.Video, error)
}

// IngestService adds many videos through the regular add path, pacing
// upstream calls with a shared rate limiter.
type IngestService struct {
	videos  VideoAdder
	limiter *rate.Limiter
	workers int
}

// IngestConfig holds configuration for the ingest service
type IngestConfig struct {
	Workers       int
	RatePerSecond float64 // <= 0 disables pacing
	Burst         int
}

// NewIngestService creates a new ingest service
func NewIngestService(videos VideoAdder, cfg *IngestConfig) *IngestService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &IngestService{
		videos:  videos,
		limiter: rate.NewLimiter(limit, burst),
		workers: workers,
	}
}

// IngestStats holds statistics for an ingestion run
type IngestStats struct {
	TotalItems     int64
	ProcessedItems int64
	AddedItems     int64
	SkippedItems   int64
	FailedItems    int64
	StartTime      time.Time
	EndTime        time.Time

	// Failures maps each failed URL to its error.
	Failures map[string]error
}

type ingestResult struct {
	url string
	err error
}

// IngestURLs adds every URL, counting already-stored videos as skipped.
// Cancelling ctx stops handing out new URLs; URLs never attempted are
// not counted as processed.
// Parameters:
//   - ctx: context for cancellation.
//   - urls: YouTube video URLs.
// Returns:
//   - *IngestStats: counts for the run.
func (s *IngestService) IngestURLs(ctx context.Context, urls []string) *IngestStats {
	stats := &IngestStats{
		TotalItems: int64(len(urls)),
		StartTime:  time.Now(),
		Failures:   make(map[string]error),
	}

	logger.CtxInfo(ctx, "Starting ingestion of %d videos with %d workers", len(urls), s.workers)

	urlsChan := make(chan string)
	resultsChan := make(chan ingestResult, s.workers)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, urlsChan, resultsChan)
		}()
	}

	done := make(chan struct{})
	go func() {
		for result := range resultsChan {
			atomic.AddInt64(&stats.ProcessedItems, 1)
			switch {
			case result.err == nil:
				atomic.AddInt64(&stats.AddedItems, 1)
			case errors.Is(result.err, domain.ErrAlreadyExists):
				atomic.AddInt64(&stats.SkippedItems, 1)
			default:
				atomic.AddInt64(&stats.FailedItems, 1)
				stats.Failures[result.url] = result.err
				logger.CtxError(ctx, "Failed to ingest %s: %v", result.url, result.err)
			}
		}
		close(done)
	}()

feed:
	for _, url := range urls {
		select {
		case urlsChan <- url:
		case <-ctx.Done():
			break feed
		}
	}
	close(urlsChan)
	wg.Wait()
	close(resultsChan)
	<-done

	stats.EndTime = time.Now()
	logger.With(logger.Fields{logger.FieldOperation: "ingest"}).
		WithCount(int(stats.ProcessedItems)).
		WithDuration(stats.EndTime.Sub(stats.StartTime).Milliseconds()).
		Info(ctx, "Ingestion finished: added=%d skipped=%d failed=%d",
		stats.AddedItems, stats.SkippedItems, stats.FailedItems)

	return stats
}

func (s *IngestService) worker(ctx context.Context, urls <-chan string, results chan<- ingestResult) {
	for url := range urls {
		if err := s.limiter.Wait(ctx); err != nil {
			results <- ingestResult{url: url, err: err}
			continue
		}
		_, err := s.videos.AddVideo(ctx, url)
		results <- ingestResult{url: url, err: err}
	}
}
