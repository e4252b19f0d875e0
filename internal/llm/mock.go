package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errScriptDone is returned once a MockProvider has used up its script.
var errScriptDone = errors.New("mock provider has no scripted replies left")

// MockResponse is one scripted reply. Err, when set, is returned instead
// of a completion. Delay holds the reply back, or until the caller's
// context ends.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error

	Model string // defaults to the requested model, then "mock"
	Stop  string // defaults to StopEnd
	Delay time.Duration
}

// MockProvider replays a script of replies in order and keeps every
// request it was sent. It backs the "mock" mode and the tests.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	next, ok := m.take(req)
	if !ok {
		return nil, &ErrProviderUnavailable{Err: errScriptDone}
	}

	if next.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(next.Delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	if next.Err != nil {
		return nil, next.Err
	}

	resp := &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      firstNonEmpty(next.Model, req.Model, "mock"),
		StopReason: firstNonEmpty(next.Stop, StopEnd),
	}
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	return resp, nil
}

// take records req and pops the next scripted reply.
func (m *MockProvider) take(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return MockResponse{}, false
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next, true
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) ListModels(context.Context) ([]string, error) {
	return []string{"mock"}, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Prompts is the last user message of each call, in call order.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		for _, msg := range c.Messages {
			if msg.Role == RoleUser {
				out[i] = msg.Content
			}
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
