// Package export writes one plain-text title/description sheet per video
// to object storage.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
	"github.com/timmy/tubevault/internal/service"
	"github.com/timmy/tubevault/internal/storage"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename replaces characters not allowed in file names with "_".
func SanitizeFilename(title string) string {
	return unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "_")
}

// Render formats the export sheet of one video.
func Render(url, title, description string) string {
	return fmt.Sprintf("%s.txt\n------------\nURL: %s\n\nTITLE: %s\n\nDESCRIPTION:\n%s\n--------------",
		title, url, title, description)
}

// TranscriptFetcher resolves a video URL and fetches its transcript.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, videoURL string) (videoID, transcript string, err error)
}

// Result describes the export of one URL.
type Result struct {
	URL      string
	VideoID  string
	Title    string
	Key      string
	Location string

	// Replaced is true when an earlier sheet with the same title was
	// overwritten.
	Replaced bool

	Err error
}

// Exporter generates and stores export sheets.
type Exporter struct {
	fetcher TranscriptFetcher
	textgen service.TextGenerator
	store   storage.ObjectStorage
}

func NewExporter(fetcher TranscriptFetcher, textgen service.TextGenerator, store storage.ObjectStorage) *Exporter {
	return &Exporter{fetcher: fetcher, textgen: textgen, store: store}
}

// Export writes the sheet for one URL. Generation failures fall back to
// placeholder text; a missing transcript fails the URL.
func (e *Exporter) Export(ctx context.Context, url string) (*Result, error) {
	videoID, transcript, err := e.fetcher.Transcript(ctx, url)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyTranscript, videoID)
	}

	title, description, errs := service.GenerateWithFallback(ctx, e.textgen, transcript)
	for _, err := range errs {
		logger.CtxWarn(ctx, "Export of %s uses fallback text: %v", videoID, err)
	}

	key := SanitizeFilename(title) + ".txt"
	replaced, err := e.store.Exists(ctx, key)
	if err != nil {
		logger.CtxWarn(ctx, "Could not check for an existing %s: %v", key, err)
	} else if replaced {
		logger.CtxWarn(ctx, "Overwriting existing export %s", key)
	}

	body := []byte(Render(url, title, description))
	if err := e.store.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "text/plain; charset=utf-8"); err != nil {
		return nil, err
	}

	return &Result{
		URL:      url,
		VideoID:  videoID,
		Title:    title,
		Key:      key,
		Location: e.store.GetURL(key),
		Replaced: replaced,
	}, nil
}

// ExportAll exports every URL in order, carrying on past failures.
func (e *Exporter) ExportAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for _, url := range urls {
		if ctx.Err() != nil {
			results = append(results, Result{URL: url, Err: ctx.Err()})
			continue
		}
		res, err := e.Export(ctx, url)
		if err != nil {
			logger.CtxError(ctx, "Export failed for %s: %v", url, err)
			results = append(results, Result{URL: url, Err: err})
			continue
		}
		logger.CtxInfo(ctx, "Created: %s", res.Location)
		results = append(results, *res)
	}
	return results
}
