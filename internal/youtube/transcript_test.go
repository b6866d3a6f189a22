package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const srv1Captions = `<?xml version="1.0" encoding="utf-8" ?>
<transcript>
<text start="4.5" dur="2.0">and a two car garage</text>
<text start="0.0" dur="2.5">Welcome to this &amp;#39;charming&amp;#39; home</text>
<text start="2.5" dur="2.0">with three   bedrooms</text>
</transcript>`

const srv3Captions = `<?xml version="1.0" encoding="utf-8" ?>
<timedtext format="3">
<body>
<p t="0" d="1500"><s>Open</s><s> kitchen</s></p>
<p t="1500" d="1000">and pool &amp;amp; spa</p>
</body>
</timedtext>`

func TestParseCaptions_Transcript(t *testing.T) {
	segments, err := ParseCaptions([]byte(srv1Captions))
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, "Welcome to this 'charming' home", segments[0].Text)
	assert.Equal(t, "with three bedrooms", segments[1].Text)
	assert.Equal(t, 4.5, segments[2].Start)
	assert.Equal(t,
		"Welcome to this 'charming' home with three bedrooms and a two car garage",
		JoinSegments(segments))
}

func TestParseCaptions_TimedText(t *testing.T) {
	segments, err := ParseCaptions([]byte(srv3Captions))
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 1.5, segments[1].Start)
	assert.Equal(t, "Open kitchen and pool & spa", JoinSegments(segments))
}

func TestParseCaptions_TimedTextMixedContent(t *testing.T) {
	doc := `<timedtext format="3"><body>
<p t="0" d="2000">Hi <s>there</s> friend</p>
<p t="2000" d="1000"><s>big</s> &amp;amp; <s t="300">bright</s></p>
</body></timedtext>`

	segments, err := ParseCaptions([]byte(doc))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Hi there friend", segments[0].Text)
	assert.Equal(t, "big & bright", segments[1].Text)
}

func TestParseCaptions_Garbage(t *testing.T) {
	_, err := ParseCaptions([]byte("<html>not captions"))
	assert.Error(t, err)
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "es", LanguageCode: "es"},
		{BaseURL: "en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "en", LanguageCode: "en"},
	}
	assert.Equal(t, "en", pickTrack(tracks, "en").BaseURL)
	assert.Equal(t, "en-asr", pickTrack(tracks[:2], "en").BaseURL)
	assert.Equal(t, "es", pickTrack(tracks, "fr").BaseURL)
}

func newCaptionServer(t *testing.T, captions string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "abc123" {
			fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{}};</script></html>`)
			return
		}
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/api/timedtext?v=abc123&lang=en","name":{"runs":[{"text":"English"}]},"languageCode":"en"}],"audioTracks":[]}}};</script></html>`, srv.URL)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		fmt.Fprint(w, captions)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscriptFetcher_Fetch(t *testing.T) {
	srv := newCaptionServer(t, srv1Captions)
	f := NewTranscriptFetcher(srv.URL+"/watch", "en", 5*time.Second)

	got := f.Fetch(context.Background(), "abc123")
	assert.Equal(t,
		"Welcome to this 'charming' home with three bedrooms and a two car garage", got)
}

func TestTranscriptFetcher_NoCaptionsYieldsEmpty(t *testing.T) {
	srv := newCaptionServer(t, srv1Captions)
	f := NewTranscriptFetcher(srv.URL+"/watch", "en", 5*time.Second)

	assert.Equal(t, "", f.Fetch(context.Background(), "other"))

	_, err := f.Segments(context.Background(), "other")
	assert.ErrorIs(t, err, errNoCaptions)
}

func TestTranscriptFetcher_UnreachableYieldsEmpty(t *testing.T) {
	f := NewTranscriptFetcher("http://127.0.0.1:1/watch", "en", time.Second)
	assert.Equal(t, "", f.Fetch(context.Background(), "abc123"))
}
