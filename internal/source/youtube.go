package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// Transcript methods recorded on quiz.Origin.
const (
	MethodCaptions = "captions"
	MethodWhisper  = "whisper"
	MethodMetadata = "metadata"
)

var (
	bareVideoID   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	videoURLForms = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	}
)

// ExtractVideoID accepts a bare 11-character video ID or a watch, short,
// embed or youtu.be URL.
func ExtractVideoID(urlOrID string) (string, error) {
	if bareVideoID.MatchString(urlOrID) {
		return urlOrID, nil
	}
	for _, re := range videoURLForms {
		if m := re.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideo, urlOrID)
}

// Window limits captions to segments overlapping [Start, End] seconds.
// A zero bound is open.
type Window struct {
	Start float64
	End   float64
}

func (w Window) overlaps(start, dur float64) bool {
	if w.Start > 0 && start+dur < w.Start {
		return false
	}
	if w.End > 0 && start > w.End {
		return false
	}
	return true
}

// Transcript is the text of a video and where it came from.
type Transcript struct {
	Text   string
	Origin quiz.Origin
}

// YouTubeTranscript returns the text of a video. It tries the published
// captions first, then a local Whisper transcription of the audio, and
// finally a synthetic transcript built from the video's title, channel
// and description. Only captions honour the window.
func (f *Fetcher) YouTubeTranscript(ctx context.Context, videoID string, w Window) (*Transcript, error) {
	origin := quiz.Origin{
		Kind:      quiz.OriginYouTube,
		VideoID:   videoID,
		StartTime: w.Start,
		EndTime:   w.End,
	}

	text, title, capErr := f.captions(ctx, videoID, w)
	if capErr == nil {
		slog.Info("fetched captions", "video", videoID, "chars", len(text))
		origin.Title = title
		origin.Method = MethodCaptions
		return &Transcript{Text: text, Origin: origin}, nil
	}
	slog.Info("no usable captions, trying local whisper", "video", videoID, "error", capErr)

	text, whisperErr := f.whisper(ctx, videoID)
	if whisperErr == nil {
		slog.Info("transcribed audio with whisper", "video", videoID, "chars", len(text))
		origin.Title = title
		origin.Method = MethodWhisper
		return &Transcript{Text: text, Origin: origin}, nil
	}
	slog.Info("whisper transcription failed, falling back to metadata", "video", videoID, "error", whisperErr)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	info, metaErr := f.videoInfo(ctx, videoID)
	if metaErr == nil {
		text, metaErr = syntheticTranscript(info)
	}
	if metaErr != nil {
		return nil, fmt.Errorf("%w for video %s: captions: %v; whisper: %v; metadata: %v",
			ErrNoText, videoID, capErr, whisperErr, metaErr)
	}

	slog.Warn("using video metadata as transcript; question quality may be limited",
		"video", videoID, "chars", len(text))
	origin.Title = info.Title
	origin.Method = MethodMetadata
	return &Transcript{Text: text, Origin: origin}, nil
}

// errNoCaptions means the watch page lists no caption tracks.
var errNoCaptions = errors.New("no captions available")
