package llm

import "context"

// callLabels tag a model call for the event log.
type callLabels struct {
	purpose string
	batchID string
}

type labelsKey struct{}

func labelsFrom(ctx context.Context) callLabels {
	l, _ := ctx.Value(labelsKey{}).(callLabels)
	return l
}

// WithPurpose labels calls made with ctx, e.g. "question-gen:MCQ".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l := labelsFrom(ctx)
	l.purpose = purpose
	return context.WithValue(ctx, labelsKey{}, l)
}

// WithBatch ties calls made with ctx to a batch log record.
func WithBatch(ctx context.Context, batchID string) context.Context {
	l := labelsFrom(ctx)
	l.batchID = batchID
	return context.WithValue(ctx, labelsKey{}, l)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := labelsFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// BatchFrom returns the batch id attached with WithBatch, if any.
func BatchFrom(ctx context.Context) string {
	return labelsFrom(ctx).batchID
}
