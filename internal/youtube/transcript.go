package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/tubevault/internal/logger"
)

const captionTracksKey = `"captionTracks":`

var errNoCaptions = errors.New("video has no caption tracks")

// Segment is one timed caption line.
type Segment struct {
	Start    float64
	Duration float64
	Text     string
}

// TranscriptFetcher reads caption tracks from a video's watch page.
type TranscriptFetcher struct {
	client   *resty.Client
	watchURL string
	language string
}

// NewTranscriptFetcher creates a fetcher that prefers captions in language.
func NewTranscriptFetcher(watchURL, language string, timeout time.Duration) *TranscriptFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept-Language", language)

	return &TranscriptFetcher{
		client:   client,
		watchURL: watchURL,
		language: language,
	}
}

// Fetch returns the transcript of a video as a single space-joined string.
// Any failure (no captions, network, parsing) yields "" and a warning.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) string {
	segments, err := f.Segments(ctx, videoID)
	if err != nil {
		logger.CtxWarn(ctx, "Transcript unavailable for %s: %v", videoID, err)
		return ""
	}
	return JoinSegments(segments)
}

// Segments returns the caption segments of a video ordered by start time.
func (f *TranscriptFetcher) Segments(ctx context.Context, videoID string) ([]Segment, error) {
	page, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("v", videoID).
		Get(f.watchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch page: %w", err)
	}
	if page.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("watch page error: status %d", page.StatusCode())
	}

	tracks, err := parseCaptionTracks(page.String())
	if err != nil {
		return nil, err
	}
	track := pickTrack(tracks, f.language)

	captions, err := f.client.R().
		SetContext(ctx).
		Get(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load captions: %w", err)
	}
	if captions.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("captions error: status %d", captions.StatusCode())
	}

	return ParseCaptions(captions.Body())
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// parseCaptionTracks decodes the captionTracks array embedded in the
// player response of a watch page.
func parseCaptionTracks(page string) ([]captionTrack, error) {
	idx := strings.Index(page, captionTracksKey)
	if idx < 0 {
		return nil, errNoCaptions
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(page[idx+len(captionTracksKey):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("failed to decode caption tracks: %w", err)
	}

	usable := tracks[:0]
	for _, t := range tracks {
		if t.BaseURL != "" {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return nil, errNoCaptions
	}
	return usable, nil
}

// pickTrack prefers a manual track in language, then a generated ("asr")
// one, then whatever comes first. tracks must be non-empty.
func pickTrack(tracks []captionTrack, language string) captionTrack {
	var generated *captionTrack
	for i, t := range tracks {
		if !strings.EqualFold(t.LanguageCode, language) {
			continue
		}
		if t.Kind != "asr" {
			return t
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated
	}
	return tracks[0]
}

// srv1 format: <transcript><text start="1.2" dur="3.4">...</text></transcript>
type srv1Transcript struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
}

// srv3 format: <timedtext><body><p t="1200" d="3400">...<s>word</s></p></body></timedtext>
type srv3Transcript struct {
	XMLName xml.Name `xml:"timedtext"`
	Paras   []struct {
		T     int64  `xml:"t,attr"`
		D     int64  `xml:"d,attr"`
		Inner string `xml:",innerxml"`
	} `xml:"body>p"`
}

// ParseCaptions decodes a caption document in either the legacy
// <transcript> or the <timedtext> format.
func ParseCaptions(data []byte) ([]Segment, error) {
	var segments []Segment

	var v1 srv1Transcript
	if err := xml.Unmarshal(data, &v1); err == nil {
		for _, t := range v1.Texts {
			segments = append(segments, Segment{Start: t.Start, Duration: t.Dur, Text: cleanCaption(t.Text)})
		}
	} else {
		var v3 srv3Transcript
		if err3 := xml.Unmarshal(data, &v3); err3 != nil {
			return nil, fmt.Errorf("failed to parse captions: %w", err)
		}
		for _, p := range v3.Paras {
			text, err := paragraphText(p.Inner)
			if err != nil {
				return nil, fmt.Errorf("failed to parse captions: %w", err)
			}
			segments = append(segments, Segment{
				Start:    float64(p.T) / 1000,
				Duration: float64(p.D) / 1000,
				Text:     cleanCaption(text),
			})
		}
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return segments, nil
}

// paragraphText returns the character data of a <p> body in document
// order, so text between <s> word spans keeps its place.
func paragraphText(inner string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader("<p>" + inner + "</p>"))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
}

// JoinSegments concatenates non-empty segment texts with single spaces.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// cleanCaption undoes the second layer of entity escaping captions carry
// and collapses whitespace.
func cleanCaption(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
