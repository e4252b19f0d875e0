package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownProvider is returned for a mode no provider is registered under.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Errors a Provider returns. The retry decorator sorts them with
// classify, and the HTTP API maps them to status codes.

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("model rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("model rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and 5xx replies.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return "model provider unavailable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrTimeout is one call running past the configured per-call timeout.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("model call timed out after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrInvalidResponse is a completion that fails its schema. Content is
// the completion as received.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return "completion rejected: " + e.Err.Error()
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrEmptyResponse is a completion with no text at all.
type ErrEmptyResponse struct {
	Model string
}

func (e *ErrEmptyResponse) Error() string {
	return "blank completion from " + e.Model
}

// ErrMaxTokensExceeded is a structured completion cut off by MaxTokens.
// Content holds the partial document.
type ErrMaxTokensExceeded struct {
	Content string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "completion cut off at the token limit"
}

// retryPolicy says how a failed call may be retried.
type retryPolicy int

const (
	retryNever retryPolicy = iota
	retryOnce              // shared budget for malformed or empty replies
	retryAlways
)

// classify maps an error from a provider to its retry policy.
// A timed-out local model will time out again, and a token limit or a
// cancelled caller does not change between attempts.
func classify(err error) retryPolicy {
	var (
		timeout *ErrTimeout
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
		empty   *ErrEmptyResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &timeout), errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &invalid), errors.As(err, &empty):
		return retryOnce
	default:
		// Rate limits, unavailable providers and transport errors.
		return retryAlways
	}
}

// providerFailure wraps an SDK error given the HTTP status it carried,
// or 0 when the request never got a reply. Context errors pass through
// so that callers can tell cancellation apart.
func providerFailure(err error, status int, h http.Header) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(h), Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// retryAfter reads a Retry-After header in either of its forms, delay
// seconds or an HTTP date. It returns zero when absent or unparsable.
func retryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}
