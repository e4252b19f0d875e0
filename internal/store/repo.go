package store

import (
	"context"
	"time"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // purpose prefix, e.g. "question-gen:" or "question-gen:MCQ"
	BatchID string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	BatchID      string // batch the call belonged to, if any
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// Usage aggregates token consumption for one group of events.
type Usage struct {
	Key          string // purpose or model, depending on the query
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]Usage, error)
	LLMUsageByModel(ctx context.Context) ([]Usage, error)
}

// BatchLogRepo is the append-only store of batch log records.
// Implementations must serialize Append so records never interleave.
type BatchLogRepo interface {
	Append(ctx context.Context, rec *quiz.BatchLogRecord) error

	// List returns every record in append order.
	List(ctx context.Context) ([]quiz.BatchLogRecord, error)

	// FindByID returns the record with the given id, or nil if absent.
	FindByID(ctx context.Context, id string) (*quiz.BatchLogRecord, error)

	Clear(ctx context.Context) error
}

// Pruner drops batch log records logged before a cutoff and reports how
// many went. Both batch log backends implement it.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int, error)
}
