package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry(t *testing.T) {
	var (
		ok      = MockResponse{Content: sampleCompletion}
		down    = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
		limited = MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}
		garbled = MockResponse{Err: &ErrInvalidResponse{Content: "bad", Err: errors.New("bad")}}
		blank   = MockResponse{Err: &ErrEmptyResponse{Model: "gemma3:latest"}}
		cut     = MockResponse{Err: &ErrMaxTokensExceeded{Content: `{"question":`}}
		slow    = MockResponse{Err: &ErrTimeout{After: 3 * time.Minute, Err: context.DeadlineExceeded}}
	)

	tests := []struct {
		name      string
		responses []MockResponse
		wantCalls int
		wantErr   bool
	}{
		{"first attempt", []MockResponse{ok}, 1, false},
		{"transient then success", []MockResponse{down, ok}, 2, false},
		{"rate limit waits then succeeds", []MockResponse{limited, ok}, 2, false},
		{"gives up after max attempts", []MockResponse{down, down, down, ok}, 3, true},
		{"blank reply retried", []MockResponse{blank, ok}, 2, false},
		{"malformed replies share one retry", []MockResponse{garbled, blank, ok}, 2, true},
		{"token limit not retried", []MockResponse{cut, ok}, 1, true},
		{"timeout not retried", []MockResponse{slow, ok}, 1, true},
		{"once budget survives transient errors", []MockResponse{garbled, down, garbled}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig())

			resp, err := p.Generate(context.Background(), Request{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
			} else if err != nil || resp.Content != sampleCompletion {
				t.Fatalf("unexpected result: %v %v", resp, err)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestRetry_KeepsLastError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("first")}},
		MockResponse{Err: &ErrTimeout{After: time.Second, Err: context.DeadlineExceeded}},
	)
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	var te *ErrTimeout
	if !errors.As(err, &te) {
		t.Fatalf("expected the final ErrTimeout, got %T (%v)", err, err)
	}
}

func TestRetry_CancelledContext(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: sampleCompletion},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := WithRetry(mock, retryConfig()).Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRetry_ZeroAttemptsStillCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "ok"})
	p := WithRetry(mock, RetryConfig{})

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil || resp == nil {
		t.Fatalf("expected one call to go through, got resp=%v err=%v", resp, err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected ModelID to delegate, got %q", p.ModelID())
	}
}

func TestRetry_BackoffHonoursRetryAfterAndCap(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 10}}

	if got := r.backoff(0, &ErrRateLimit{RetryAfter: 5 * time.Second}); got != 5*time.Second {
		t.Fatalf("expected Retry-After to win, got %s", got)
	}
	for n := range 4 {
		got := r.backoff(n, errors.New("x"))
		if got > 1200*time.Millisecond {
			t.Fatalf("backoff(%d) = %s exceeds cap plus jitter", n, got)
		}
	}
}
