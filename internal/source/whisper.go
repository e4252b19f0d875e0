package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// whisper downloads the audio track with yt-dlp and transcribes it on the
// CPU with the tiny Whisper model.
func (f *Fetcher) whisper(ctx context.Context, videoID string) (string, error) {
	for _, tool := range []string{"yt-dlp", "whisper"} {
		if err := f.require(tool); err != nil {
			return "", err
		}
	}

	audio := filepath.Join(f.tempDir, videoID+"_audio.mp3")
	transcript := filepath.Join(f.tempDir, videoID+"_audio.txt")
	defer func() {
		_ = os.Remove(audio)
		_ = os.Remove(transcript)
	}()

	if _, err := f.runner.Run(ctx, "yt-dlp",
		"-x", "--audio-format", "mp3", "--audio-quality", "9",
		"--extractor-args", "youtube:player_client=android",
		"-o", audio, f.watchURL+videoID,
	); err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	if _, err := f.runner.Run(ctx, "whisper", audio,
		"--model", "tiny",
		"--output_dir", f.tempDir,
		"--output_format", "txt",
		"--language", "en",
		"--device", "cpu",
	); err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	data, err := os.ReadFile(transcript)
	if err != nil {
		return "", fmt.Errorf("read transcription: %w", err)
	}
	text := normalizeText(string(data))
	if text == "" {
		return "", fmt.Errorf("whisper: %w", ErrNoText)
	}
	return text, nil
}
