package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pgokul695/Winterthon/internal/store"
)

// LoggingProvider records every call it passes on as an LLM request
// event, tagged with the purpose and batch found in the context.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
}

// WithLogging wraps p. name is the mode recorded as the event's provider.
func WithLogging(p Provider, name string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, name: name, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       firstNonEmpty(req.Model, l.inner.ModelID()),
		Purpose:     PurposeFrom(ctx),
		BatchID:     BatchFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcribe(req),
	}
	if resp != nil {
		ev.Model = firstNonEmpty(resp.Model, ev.Model)
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Content
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		ev.ResponseBody = rejectedContent(err)
	}

	slog.Debug("model call",
		"mode", l.name, "model", ev.Model, "purpose", ev.Purpose,
		"ms", ev.LatencyMs, "ok", ev.Success)

	// Written even when ctx is cancelled, and a failed write only warns.
	if werr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
		slog.Warn("failed to log LLM request event", "mode", l.name, "err", werr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// rejectedContent is the completion text an error kept, if any.
func rejectedContent(err error) string {
	var invalid *ErrInvalidResponse
	var cut *ErrMaxTokensExceeded
	switch {
	case errors.As(err, &invalid):
		return invalid.Content
	case errors.As(err, &cut):
		return cut.Content
	}
	return ""
}

// transcribe renders req the way `winterthon llm view` shows it: one
// [role] section per message, then the schema if there is one.
func transcribe(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}

	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return b.String()
}
