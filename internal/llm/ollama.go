package llm

import (
	"fmt"
	"net/http"
	"strings"
)

// OllamaProvider wraps OpenAIProvider with Ollama-specific defaults.
// Ollama serves an OpenAI-compatible API under /v1, so the same SDK is
// reused for completions and for listing installed models.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider for a local Ollama server.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	inner := newOpenAIProviderRaw(OpenAIConfig{
		// Ollama ignores the key but the SDK always sends one.
		APIKey:  "ollama",
		Model:   cfg.Model,
		BaseURL: ollamaAPIBase(cfg.BaseURL),
	}, &http.Client{})
	inner.models = nil
	inner.model = cfg.Model
	inner.jsonObject = true

	return &OllamaProvider{OpenAIProvider: inner}, nil
}

// ollamaAPIBase turns a server URL into its OpenAI-compatible base.
func ollamaAPIBase(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}
