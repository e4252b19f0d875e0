package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the llm_request_events table.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequencer
}

var eventColumns = []string{
	"id", "sequence", "timestamp_ms", "provider", "model", "purpose", "batch_id", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	now := time.Now().UnixMilli()
	_, err := r.seq.insert(ctx, func(seq int64) *entsql.InsertBuilder {
		return builder.Insert(llmEventsTable.Name).
			Columns(eventColumns[1:]...).
			Values(
				seq,
				now,
				data.Provider,
				data.Model,
				data.Purpose,
				data.BatchID,
				data.InputTokens,
				data.OutputTokens,
				data.LatencyMs,
				data.Success,
				data.ErrorMessage,
				data.RequestBody,
				data.ResponseBody,
			)
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder.Select(eventColumns...).
		From(builder.Table(llmEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, purposePrefix(opts.Purpose))
	}
	if opts.BatchID != "" {
		preds = append(preds, entsql.EQ("batch_id", opts.BatchID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	events, err := r.scanEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	sel := builder.Select(eventColumns...).
		From(builder.Table(llmEventsTable.Name)).
		Where(entsql.EQ("id", id))

	events, err := r.scanEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) scanEvents(ctx context.Context, sel *entsql.Selector) ([]LLMEvent, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		var (
			e    LLMEvent
			tsMs int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &tsMs, &e.Provider, &e.Model, &e.Purpose, &e.BatchID,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
			&e.RequestBody, &e.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		e.Timestamp = time.UnixMilli(tsMs).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]Usage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]Usage, error) {
	return r.usageBy(ctx, "model")
}

// usageBy aggregates events grouped by column, busiest group first.
func (r *eventRepo) usageBy(ctx context.Context, column string) ([]Usage, error) {
	query, args := builder.Select(
		column,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Avg("latency_ms"),
	).
		From(builder.Table(llmEventsTable.Name)).
		GroupBy(column).
		OrderBy(entsql.Desc("calls"), column).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("aggregate usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var (
			u   Usage
			avg float64
		)
		if err := rows.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

// purposePrefix matches purposes that start with prefix literally, so
// "%" and "_" in it are not wildcards.
func purposePrefix(prefix string) *entsql.Predicate {
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix) + "%"
	return entsql.P(func(b *entsql.Builder) {
		b.Ident("purpose").WriteString(" LIKE ").Arg(pattern).WriteString(` ESCAPE '\'`)
	})
}
