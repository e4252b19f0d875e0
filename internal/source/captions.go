package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Segments []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
}

// captions downloads the preferred caption track of a video and joins the
// segments that overlap w. It also returns the page title.
func (f *Fetcher) captions(ctx context.Context, videoID string, w Window) (string, string, error) {
	page, err := f.get(ctx, f.watchURL+videoID)
	if err != nil {
		return "", "", fmt.Errorf("fetch watch page: %w", err)
	}
	title := pageTitle(string(page))

	tracks, err := captionTracks(string(page))
	if err != nil {
		return "", title, err
	}
	track := pickTrack(tracks)

	data, err := f.get(ctx, track.BaseURL)
	if err != nil {
		return "", title, fmt.Errorf("fetch captions: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", title, fmt.Errorf("decode captions: %w", err)
	}

	var parts []string
	for _, seg := range tt.Segments {
		if !w.overlaps(seg.Start, seg.Dur) {
			continue
		}
		// Caption text arrives entity-escaped a second time.
		text := strings.Join(strings.Fields(html.UnescapeString(seg.Text)), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		if len(tt.Segments) > 0 {
			return "", title, fmt.Errorf("%w in the requested time range", ErrNoText)
		}
		return "", title, errNoCaptions
	}
	return strings.Join(parts, " "), title, nil
}

// captionTracks decodes the captionTracks array embedded in a watch page.
func captionTracks(page string) ([]captionTrack, error) {
	const key = `"captionTracks":`
	i := strings.Index(page, key)
	if i < 0 {
		return nil, errNoCaptions
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(page[i+len(key):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, errNoCaptions
	}
	return tracks, nil
}

// pickTrack prefers manual English captions, then any English track,
// then the first track listed.
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

func pageTitle(page string) string {
	start := strings.Index(page, "<title>")
	if start < 0 {
		return ""
	}
	start += len("<title>")
	end := strings.Index(page[start:], "</title>")
	if end < 0 {
		return ""
	}
	title := html.UnescapeString(page[start : start+end])
	return strings.TrimSpace(strings.TrimSuffix(title, " - YouTube"))
}
