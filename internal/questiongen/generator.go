package questiongen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/store"
)

// ProviderSource resolves a provider selector ("mode") to a model caller.
// *llm.Registry implements it.
type ProviderSource interface {
	Provider(ctx context.Context, name string) (llm.Provider, error)
}

// Config controls the behavior of the Generator.
type Config struct {
	// Format is the completion grammar requested from the model.
	Format Format

	// MaxTokens is the token budget for each completion.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Rand shuffles answer options. Nil uses the package-level source.
	Rand *rand.Rand
}

// DefaultConfig returns the settings used by the server and CLI.
func DefaultConfig() Config {
	return Config{
		Format:      FormatText,
		MaxTokens:   2048,
		Temperature: 0.2,
	}
}

// BatchRequest asks for a number of questions per type about SourceText.
type BatchRequest struct {
	SourceText    string                    `json:"transcript" validate:"notblank"`
	QuestionTypes map[quiz.QuestionType]int `json:"questionTypes" validate:"required,min=1,dive,keys,required,endkeys,gte=0,lte=50"`
	Model         quiz.ModelSelector        `json:"model"`
	Origin        *quiz.Origin              `json:"origin,omitempty"`
}

// BatchResult is what GenerateBatch hands back to the caller. The same
// data is appended to the batch log.
type BatchResult struct {
	BatchID             string                   `json:"batchId"`
	Questions           []quiz.GeneratedQuestion `json:"questions"`
	Prompts             []quiz.PromptLogEntry    `json:"prompts"`
	TotalElapsedSeconds float64                  `json:"totalTime"`
	QuestionsGenerated  int                      `json:"questionsGenerated"`
	Model               quiz.ModelSelector       `json:"model"`
}

// Generator turns batch requests into questions, one model call per
// requested question.
type Generator struct {
	providers ProviderSource
	sink      store.BatchLogRepo
	config    Config
	shuffler  *shuffler
}

// New creates a Generator. sink may be nil to skip batch logging.
func New(providers ProviderSource, sink store.BatchLogRepo, cfg Config) *Generator {
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	return &Generator{
		providers: providers,
		sink:      sink,
		config:    cfg,
		shuffler:  &shuffler{rng: cfg.Rand},
	}
}

// GenerateBatch runs every requested attempt in order. Attempts that fail
// are logged and skipped, so a batch that produced nothing still succeeds.
// Only an invalid request (an unknown mode included) or a provider that
// cannot be built returns an error. A cancelled ctx stops further
// attempts; the partial batch is still logged.
func (g *Generator) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	provider, err := g.providers.Provider(ctx, req.Model.Provider)
	if errors.Is(err, llm.ErrUnknownProvider) {
		return nil, &InvalidRequestError{Fields: []FieldError{{
			Field:   "mode",
			Rule:    "provider",
			Message: fmt.Sprintf("mode %q is not a known provider", req.Model.Provider),
		}}}
	}
	if err != nil {
		return nil, &ModelCallError{Provider: req.Model.Provider, Model: req.Model.Name, Err: err}
	}
	model := req.Model
	if model.Name == "" {
		model.Name = provider.ModelID()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate batch id: %w", err)
	}

	started := time.Now()
	res := &BatchResult{
		BatchID:   id.String(),
		Questions: []quiz.GeneratedQuestion{},
		Prompts:   []quiz.PromptLogEntry{},
		Model:     model,
	}
	var previous []string
	ctx = llm.WithBatch(ctx, res.BatchID)

attempts:
	for _, qt := range orderTypes(req.QuestionTypes) {
		for range req.QuestionTypes[qt] {
			if ctx.Err() != nil {
				break attempts
			}

			q, entry := g.attempt(ctx, provider, model, qt, req.SourceText, previous)
			res.Prompts = append(res.Prompts, entry)
			if q != nil {
				res.Questions = append(res.Questions, *q)
				previous = append(previous, q.QuestionText)
			} else {
				slog.Debug("question attempt failed",
					"batch", res.BatchID, "type", qt, "error", entry.Error)
			}
		}
	}

	res.TotalElapsedSeconds = time.Since(started).Seconds()
	res.QuestionsGenerated = len(res.Questions)

	g.record(ctx, req, res, started)
	return res, nil
}

// attempt makes one model call and parses the completion. It returns a
// nil question on failure.
func (g *Generator) attempt(ctx context.Context, p llm.Provider, model quiz.ModelSelector, qt quiz.QuestionType, sourceText string, previous []string) (*quiz.GeneratedQuestion, quiz.PromptLogEntry) {
	start := time.Now()

	prompt := BuildPrompt(qt, sourceText, previous)
	var schema *llm.Schema
	if g.config.Format == FormatJSON {
		prompt = BuildJSONPrompt(qt, sourceText, previous)
		schema = LotQuestionSchema
	}
	entry := quiz.PromptLogEntry{QuestionType: qt, Prompt: prompt}

	ctx = llm.WithPurpose(ctx, "question-gen:"+string(qt))
	resp, err := p.Generate(ctx, llm.Request{
		Model:       model.Name,
		Messages:    llm.UserPrompt(prompt),
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		err = &ModelCallError{Provider: model.Provider, Model: model.Name, Err: err}
		failAttempt(&entry, err, rawFromError(err), start)
		return nil, entry
	}

	parse := Parse
	if g.config.Format == FormatJSON {
		parse = ParseJSON
	}
	pq, err := parse(resp.Content)
	if err != nil {
		failAttempt(&entry, err, resp.Content, start)
		return nil, entry
	}

	elapsed := time.Since(start).Seconds()
	q := g.shuffler.buildQuestion(pq, qt, elapsed, resp.Content)
	entry.Response = resp.Content
	entry.ElapsedSeconds = elapsed
	return &q, entry
}

func failAttempt(entry *quiz.PromptLogEntry, err error, raw string, start time.Time) {
	entry.Error = err.Error()
	entry.Response = "ERROR: " + err.Error()
	if raw != "" {
		entry.Response += "\n\nRAW OUTPUT:\n" + raw
	}
	entry.ElapsedSeconds = time.Since(start).Seconds()
}

// rawFromError recovers the completion text carried by provider errors
// that reject a response after it arrived.
func rawFromError(err error) string {
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		return invalid.Content
	}
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return truncated.Content
	}
	return ""
}

// record appends the batch to the log sink. Failures are logged only.
func (g *Generator) record(ctx context.Context, req BatchRequest, res *BatchResult, started time.Time) {
	if g.sink == nil {
		return
	}
	rec := &quiz.BatchLogRecord{
		ID:                  res.BatchID,
		Timestamp:           started.UTC(),
		Mode:                res.Model.Provider,
		Model:               res.Model.Name,
		QuestionTypes:       req.QuestionTypes,
		TotalElapsedSeconds: res.TotalElapsedSeconds,
		QuestionsGenerated:  res.QuestionsGenerated,
		Questions:           res.Questions,
		Prompts:             res.Prompts,
		Transcript:          quiz.TruncateTranscript(req.SourceText),
		Origin:              req.Origin,
	}
	if err := g.sink.Append(context.WithoutCancel(ctx), rec); err != nil {
		slog.Warn("failed to record batch log", "batch", res.BatchID, "error", err)
	}
}

// orderTypes returns the requested types with a positive count: known
// types in canonical order, then unknown codes sorted.
func orderTypes(counts map[quiz.QuestionType]int) []quiz.QuestionType {
	var out []quiz.QuestionType
	for _, qt := range quiz.KnownTypes {
		if counts[qt] > 0 {
			out = append(out, qt)
		}
	}
	var unknown []quiz.QuestionType
	for qt, n := range counts {
		if n > 0 && !qt.Known() {
			unknown = append(unknown, qt)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}
