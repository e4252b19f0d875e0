package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// fakeRunner pretends the listed tools are installed and answers Run
// through fn.
type fakeRunner struct {
	installed map[string]bool
	fn        func(name string, args []string) ([]byte, error)

	mu    sync.Mutex
	calls []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
	if r.fn == nil {
		return nil, errors.New("not scripted")
	}
	return r.fn(name, args)
}

func (r *fakeRunner) LookPath(name string) (string, error) {
	if r.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ", false},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"too short", "abc123", "", true},
		{"other site", "https://vimeo.com/123456789", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidVideo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.0" dur="4.0">Plants capture light</text>
<text start="4.0" dur="4.0">and turn it into sugar.</text>
<text start="30.0" dur="5.0">Oxygen is a by-product &amp;amp; it&amp;#39;s released.</text>
</transcript>`

func captionServer(t *testing.T, withTracks bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			tracks := ""
			if withTracks {
				tracks = fmt.Sprintf(`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
					`{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},`+
					`{"baseUrl":"%[1]s/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"}],"audioTracks":[]}},`,
					srv.URL)
			}
			_, _ = fmt.Fprintf(w, `<html><head><title>Photosynthesis Basics - YouTube</title></head>`+
				`<script>var ytInitialPlayerResponse = {%s"videoDetails":{"author":"Science Channel",`+
				`"shortDescription":"Short."}};</script></html>`, tracks)
		case "/timedtext":
			if r.URL.Query().Get("lang") != "en" {
				http.Error(w, "wrong track", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(timedTextXML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYouTubeTranscript_Captions(t *testing.T) {
	srv := captionServer(t, true)
	runner := &fakeRunner{}
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(runner))

	tr, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{})
	require.NoError(t, err)

	assert.Equal(t, "Plants capture light and turn it into sugar. Oxygen is a by-product & it's released.", tr.Text)
	assert.Equal(t, quiz.Origin{
		Kind:    quiz.OriginYouTube,
		VideoID: "dQw4w9WgXcQ",
		Title:   "Photosynthesis Basics",
		Method:  MethodCaptions,
	}, tr.Origin)
	assert.Empty(t, runner.calls, "captions should not need external tools")
}

func TestYouTubeTranscript_CaptionWindow(t *testing.T) {
	srv := captionServer(t, true)
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(&fakeRunner{}))

	tr, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{Start: 5, End: 20})
	require.NoError(t, err)
	assert.Equal(t, "and turn it into sugar.", tr.Text)
	assert.Equal(t, 5.0, tr.Origin.StartTime)
	assert.Equal(t, 20.0, tr.Origin.EndTime)
}

func TestYouTubeTranscript_WhisperFallback(t *testing.T) {
	srv := captionServer(t, false)
	dir := t.TempDir()
	runner := &fakeRunner{
		installed: map[string]bool{"yt-dlp": true, "whisper": true},
		fn: func(name string, args []string) ([]byte, error) {
			if name == "whisper" {
				base := strings.TrimSuffix(filepath.Base(args[0]), ".mp3")
				return nil, os.WriteFile(filepath.Join(dir, base+".txt"), []byte("  Spoken words\n\nfrom the video \n"), 0o644)
			}
			return nil, nil
		},
	}
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(runner), WithTempDir(dir))

	tr, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{})
	require.NoError(t, err)
	assert.Equal(t, "Spoken words\n\nfrom the video", tr.Text)
	assert.Equal(t, MethodWhisper, tr.Origin.Method)
	assert.Equal(t, []string{"yt-dlp", "whisper"}, runner.calls)

	_, statErr := os.Stat(filepath.Join(dir, "dQw4w9WgXcQ_audio.txt"))
	assert.True(t, os.IsNotExist(statErr), "transcription file should be cleaned up")
}

func TestYouTubeTranscript_MetadataFallback(t *testing.T) {
	srv := captionServer(t, false)
	desc := "In this lesson we explore how green plants use sunlight, water and carbon dioxide to build sugars. " +
		"More at https://example.com/lesson\n\n\n\nSubscribe!"
	runner := &fakeRunner{
		installed: map[string]bool{"yt-dlp": true},
		fn: func(name string, args []string) ([]byte, error) {
			if args[0] == "--dump-json" {
				return []byte(fmt.Sprintf(`{"title":"Photosynthesis","uploader":"Science Channel","description":%q}`, desc)), nil
			}
			return nil, errors.New("unexpected call")
		},
	}
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(runner))

	tr, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{})
	require.NoError(t, err)
	assert.Equal(t, MethodMetadata, tr.Origin.Method)
	assert.Equal(t, "Photosynthesis", tr.Origin.Title)
	assert.Contains(t, tr.Text, "Video Title: Photosynthesis")
	assert.Contains(t, tr.Text, "Channel: Science Channel")
	assert.Contains(t, tr.Text, "Video Description: In this lesson")
	assert.NotContains(t, tr.Text, "https://")
	assert.NotContains(t, tr.Text, "\n\n\n")
}

func TestYouTubeTranscript_ScrapedMetadata(t *testing.T) {
	srv := captionServer(t, false)
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(&fakeRunner{}))

	tr, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{})
	require.NoError(t, err)
	// The scraped description is too short to keep.
	assert.Equal(t, "Video Title: Photosynthesis Basics\n\nChannel: Science Channel", tr.Text)
}

func TestYouTubeTranscript_AllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	f := NewFetcher(WithWatchURL(srv.URL+"/watch?v="), WithRunner(&fakeRunner{}))

	_, err := f.YouTubeTranscript(context.Background(), "dQw4w9WgXcQ", Window{})
	require.ErrorIs(t, err, ErrNoText)
	assert.Contains(t, err.Error(), "captions:")
	assert.Contains(t, err.Error(), "whisper:")
}

func TestSyntheticTranscript(t *testing.T) {
	_, err := syntheticTranscript(videoInfo{})
	require.Error(t, err)

	text, err := syntheticTranscript(videoInfo{Title: "T", Channel: "C", Description: "too short"})
	require.NoError(t, err)
	assert.Equal(t, "Video Title: T\n\nChannel: C", text)
}

func TestPDFText(t *testing.T) {
	runner := &fakeRunner{
		installed: map[string]bool{"pdftotext": true},
		fn: func(name string, args []string) ([]byte, error) {
			assert.Equal(t, "pdftotext", name)
			assert.Equal(t, "-", args[len(args)-1])
			return []byte("  Chapter 1  \n\n\n\nPlants   need light.\fPage two\n"), nil
		},
	}
	f := NewFetcher(WithRunner(runner))

	text, err := f.PDFText(context.Background(), "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1\n\nPlants need light.\nPage two", text)
}

func TestPDFText_Errors(t *testing.T) {
	f := NewFetcher(WithRunner(&fakeRunner{}))
	_, err := f.PDFText(context.Background(), "notes.pdf")
	require.ErrorIs(t, err, ErrToolMissing)

	f = NewFetcher(WithRunner(&fakeRunner{
		installed: map[string]bool{"pdftotext": true},
		fn: func(string, []string) ([]byte, error) {
			return []byte("\f\n  \n"), nil
		},
	}))
	_, err = f.PDFText(context.Background(), "scan.pdf")
	require.ErrorIs(t, err, ErrNoText)
}

func TestNormalizeText_FoldsLigatures(t *testing.T) {
	assert.Equal(t, "The first field\n\nflows", normalizeText("The ﬁrst ﬁeld\r\n\r\n\r\nﬂows "))
}
