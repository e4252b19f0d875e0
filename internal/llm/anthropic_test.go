package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-sonnet-4-20250514",
	}
}

// anthropicMessage answers with one text block.
func anthropicMessage(text, stopReason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": stopReason,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicError(status int, kind string, header http.Header) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": "nope"},
		})
	}
}

func TestAnthropicProvider_Completion(t *testing.T) {
	var sent map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		anthropicMessage(sampleCompletion, "end_turn")(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		Model:       "claude-haiku",
		Messages:    UserPrompt("Generate a question."),
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != sampleCompletion || resp.StopReason != StopEnd {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Fatalf("expected 80 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if sent["model"] != "claude-haiku-4-5-20251001" {
		t.Fatalf("friendly name not resolved: %v", sent["model"])
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	cut := "QUESTION:\nWhat do plants absorb?\nCORRECT:\nCO2\nWRONG:\nO2\nN2\nHe\nEXPLANA"

	p := newTestAnthropicProvider(t, anthropicMessage(cut, "max_tokens"))
	resp, err := p.Generate(context.Background(), Request{Messages: UserPrompt("q"), MaxTokens: 40})
	if err != nil {
		t.Fatalf("text mode should keep a truncated completion: %v", err)
	}
	if resp.StopReason != StopMaxTokens {
		t.Fatalf("expected max_tokens stop, got %q", resp.StopReason)
	}

	p = newTestAnthropicProvider(t, anthropicMessage(`{"question":{"te`, "max_tokens"))
	_, err = p.Generate(context.Background(), Request{Messages: UserPrompt("q"), MaxTokens: 40, Schema: lotSchema()})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) || maxTok.Content != `{"question":{"te` {
		t.Fatalf("expected ErrMaxTokensExceeded with content, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit carries Retry-After", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error",
			http.Header{"Retry-After": {"7"}}))
		_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("q"), MaxTokens: 10})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
		}
		if rl.RetryAfter != 7*time.Second {
			t.Fatalf("expected 7s retry-after, got %s", rl.RetryAfter)
		}
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicError(http.StatusInternalServerError, "api_error", nil))
		_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("q"), MaxTokens: 10})
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
		}
	})

	t.Run("blank completion", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicMessage("  \n", "end_turn"))
		_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("q"), MaxTokens: 10})
		var empty *ErrEmptyResponse
		if !errors.As(err, &empty) || empty.Model != "claude-sonnet-4-20250514" {
			t.Fatalf("expected ErrEmptyResponse naming the model, got %T (%v)", err, err)
		}
	})
}

func TestAnthropicProvider_ListModels(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("unexpected model id %q", p.ModelID())
	}
	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "claude-haiku" || models[1] != "claude-sonnet" {
		t.Fatalf("unexpected models %v", models)
	}
}
