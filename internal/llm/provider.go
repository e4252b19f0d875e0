package llm

import (
	"context"
	"strings"
)

// Provider is one model backend: a hosted API, a local Ollama, or the
// decorators stacked over them.
type Provider interface {
	// Generate returns the completion for req. Schema requests come
	// back as a JSON document already checked against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model used when a request names none.
	ModelID() string
}

// ModelLister is implemented by providers that can enumerate the models
// they serve.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Request is one completion call.
type Request struct {
	// Model overrides the provider's default model for this call.
	// Friendly names are resolved through the provider's model table.
	Model string

	System string

	// Messages is the conversation history. Question generation sends a
	// single user message holding the whole prompt.
	Messages []Message

	// Schema switches the call to JSON output. Nil asks for free text,
	// which is what the labelled completion format uses.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider's default, except
	// for OpenAI-compatible servers which take it literally.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the common single-turn request.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// Schema is a JSON Schema document plus the name providers know it by.
// Name also keys the compiled validator, so two schemas must not share
// one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a finished completion.
type Response struct {
	Content string
	Usage   Usage

	// Model is the version that served the call when the provider
	// reports one ("gemini-1.5-pro-002"), else the requested model.
	Model string

	// StopReason indicates why generation stopped: StopEnd or
	// StopMaxTokens.
	StopReason string
}

// Normalised stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}

// reply is what a provider pulled out of its SDK's answer.
type reply struct {
	text  string
	model string // model that served the call, if reported
	stop  string
	usage Usage
}

// finish turns a reply into a Response. An empty completion is an error.
// A completion cut off at the token limit is kept in text mode, where the
// trailing EXPLANATIONS section is optional, but fails a schema request
// because the JSON is incomplete.
func finish(req Request, requested string, r reply) (*Response, error) {
	if strings.TrimSpace(r.text) == "" {
		return nil, &ErrEmptyResponse{Model: requested}
	}
	if req.Schema != nil {
		if r.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: r.text}
		}
		if err := validateResponse(req.Schema, r.text); err != nil {
			return nil, err
		}
	}

	if r.model == "" {
		r.model = requested
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	return &Response{Content: r.text, Usage: r.usage, Model: r.model, StopReason: r.stop}, nil
}

// pickModel returns the request's model when set, else the fallback.
func pickModel(req Request, fallback string, models map[string]string) string {
	if req.Model != "" {
		return resolveModel(req.Model, models)
	}
	return fallback
}
