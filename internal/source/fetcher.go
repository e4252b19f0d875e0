// Package source turns uploads and video links into plain text that
// questions can be generated from.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"
)

var (
	ErrToolMissing  = errors.New("required external tool is not installed")
	ErrNoText       = errors.New("no extractable text")
	ErrInvalidVideo = errors.New("invalid YouTube URL or video ID")
)

// Runner executes external programs.
type Runner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath reports where name is installed.
	LookPath(name string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Fetcher acquires source text from PDFs and YouTube videos.
type Fetcher struct {
	client   *http.Client
	runner   Runner
	watchURL string
	tempDir  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the HTTP timeout for page and caption downloads.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option {
	return func(f *Fetcher) { f.runner = r }
}

// WithWatchURL overrides the YouTube watch page prefix; the video ID is
// appended to it.
func WithWatchURL(u string) Option {
	return func(f *Fetcher) { f.watchURL = u }
}

// WithTempDir sets where downloaded audio is kept while transcribing.
func WithTempDir(dir string) Option {
	return func(f *Fetcher) { f.tempDir = dir }
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		runner:   execRunner{},
		watchURL: "https://www.youtube.com/watch?v=",
		tempDir:  os.TempDir(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func (f *Fetcher) require(tool string) error {
	if _, err := f.runner.LookPath(tool); err != nil {
		return fmt.Errorf("%w: %s", ErrToolMissing, tool)
	}
	return nil
}
