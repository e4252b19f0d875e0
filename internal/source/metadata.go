package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// videoInfo is the subset of yt-dlp's --dump-json output we use.
type videoInfo struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Uploader    string  `json:"uploader"`
	Channel     string  `json:"channel"`
	Duration    float64 `json:"duration"`
}

func (v videoInfo) channelName() string {
	if v.Uploader != "" {
		return v.Uploader
	}
	return v.Channel
}

// videoInfo reads metadata with yt-dlp, falling back to the watch page.
func (f *Fetcher) videoInfo(ctx context.Context, videoID string) (videoInfo, error) {
	if err := f.require("yt-dlp"); err == nil {
		out, err := f.runner.Run(ctx, "yt-dlp", "--dump-json", "--no-warnings",
			"--extractor-args", "youtube:player_client=android", f.watchURL+videoID)
		if err == nil {
			var info videoInfo
			if err := json.Unmarshal(out, &info); err == nil {
				return info, nil
			}
		}
	}
	return f.scrapeVideoInfo(ctx, videoID)
}

func (f *Fetcher) scrapeVideoInfo(ctx context.Context, videoID string) (videoInfo, error) {
	page, err := f.get(ctx, f.watchURL+videoID)
	if err != nil {
		return videoInfo{}, fmt.Errorf("fetch watch page: %w", err)
	}
	s := string(page)
	return videoInfo{
		Title:       pageTitle(s),
		Description: jsonStringField(s, "shortDescription"),
		Uploader:    jsonStringField(s, "author"),
	}, nil
}

// jsonStringField finds "key":"..." in a page and decodes the string.
func jsonStringField(page, key string) string {
	marker := `"` + key + `":"`
	i := strings.Index(page, marker)
	if i < 0 {
		return ""
	}
	rest := page[i+len(marker)-1:]
	var v string
	if err := json.NewDecoder(strings.NewReader(rest)).Decode(&v); err != nil {
		return ""
	}
	return v
}

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	blankRunsPat = regexp.MustCompile(`\n{3,}`)
)

// minDescriptionLen is the shortest cleaned description worth quizzing on.
const minDescriptionLen = 100

// syntheticTranscript stands in for a transcript when only metadata is
// available.
func syntheticTranscript(info videoInfo) (string, error) {
	var parts []string
	if info.Title != "" {
		parts = append(parts, "Video Title: "+info.Title)
	}
	if ch := info.channelName(); ch != "" {
		parts = append(parts, "Channel: "+ch)
	}
	if info.Description != "" {
		desc := urlPattern.ReplaceAllString(info.Description, "")
		desc = strings.TrimSpace(blankRunsPat.ReplaceAllString(desc, "\n\n"))
		if len(desc) > minDescriptionLen {
			parts = append(parts, "Video Description: "+desc)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no video information available")
	}
	return strings.Join(parts, "\n\n"), nil
}
