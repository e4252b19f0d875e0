package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequencer stamps rows with the sequence shared by LLM events and batch
// logs, so a batch lines up with the model calls that produced it. The
// counter bump and the insert commit together; a failed insert does not
// use up a number.
//
// The counter is raw SQL because ent has no database-level atomic
// counter. The mutex serializes within the process; RETURNING makes the
// increment atomic in the database.
type sequencer struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

func newSequencer(ctx context.Context, drv *entsql.Driver) (*sequencer, error) {
	if err := drv.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil); err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	if err := drv.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequencer{drv: drv}, nil
}

// insert runs the insert built for the next sequence number in the same
// transaction as the counter bump. It returns the number used.
func (s *sequencer) insert(ctx context.Context, build func(seq int64) *entsql.InsertBuilder) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return 0, err
	}

	query, args := build(seq).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return seq, nil
}

func nextSequence(ctx context.Context, q dialect.ExecQuerier) (int64, error) {
	var rows entsql.Rows
	if err := q.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, &rows,
	); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	var seq int64
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
