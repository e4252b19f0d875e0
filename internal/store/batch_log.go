package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// batchLogRepo implements BatchLogRepo on the batch_logs table. The full
// record is kept as JSON; the other columns exist for listing and stats.
type batchLogRepo struct {
	drv *entsql.Driver
	seq *sequencer
}

func (r *batchLogRepo) Append(ctx context.Context, rec *quiz.BatchLogRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch log %s: %w", rec.ID, err)
	}

	_, err = r.seq.insert(ctx, func(seq int64) *entsql.InsertBuilder {
		return builder.Insert(batchLogsTable.Name).
			Columns("sequence", "id", "timestamp_ms", "mode", "model", "questions_generated", "total_time", "record").
			Values(
				seq,
				rec.ID,
				rec.Timestamp.UnixMilli(),
				rec.Mode,
				rec.Model,
				rec.QuestionsGenerated,
				rec.TotalElapsedSeconds,
				string(body),
			)
	})
	if err != nil {
		return fmt.Errorf("save batch log %s: %w", rec.ID, err)
	}
	return nil
}

func (r *batchLogRepo) List(ctx context.Context) ([]quiz.BatchLogRecord, error) {
	out, err := r.records(ctx, builder.Select("record").
		From(builder.Table(batchLogsTable.Name)).
		OrderBy("sequence"))
	if err != nil {
		return nil, fmt.Errorf("query batch logs: %w", err)
	}
	return out, nil
}

func (r *batchLogRepo) FindByID(ctx context.Context, id string) (*quiz.BatchLogRecord, error) {
	out, err := r.records(ctx, builder.Select("record").
		From(builder.Table(batchLogsTable.Name)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get batch log %s: %w", id, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *batchLogRepo) Clear(ctx context.Context) error {
	query, args := builder.Delete(batchLogsTable.Name).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear batch logs: %w", err)
	}
	return nil
}

func (r *batchLogRepo) Prune(ctx context.Context, before time.Time) (int, error) {
	query, args := builder.Delete(batchLogsTable.Name).
		Where(entsql.LT("timestamp_ms", before.UnixMilli())).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("prune batch logs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// records runs sel, which selects the record column, and decodes each row.
func (r *batchLogRepo) records(ctx context.Context, sel *entsql.Selector) ([]quiz.BatchLogRecord, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quiz.BatchLogRecord
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan batch log: %w", err)
		}
		var rec quiz.BatchLogRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decode batch log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
