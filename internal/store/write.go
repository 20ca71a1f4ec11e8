package store

import (
	"context"
	"fmt"

	"github.com/roach88/tickseq/internal/ir"
)

// BeginRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - reopening a run is a no-op.
func (s *Store) BeginRun(ctx context.Context, run ir.Run) error {
	status := run.Status
	if status == "" {
		status = ir.RunRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, status, ticks)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Scenario, string(status), int64(run.Ticks))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the final status and tick count of a run.
func (s *Store) FinishRun(ctx context.Context, id string, ticks uint64, status ir.RunStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, ticks = ? WHERE id = ?
	`, string(status), int64(ticks), id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w", &NotFoundError{Kind: "run", ID: id})
	}
	return nil
}

// WriteStep inserts a step record.
// Uses ON CONFLICT DO NOTHING for idempotency - duplicate (run_id, seq)
// pairs are silently ignored. The run must exist (foreign key constraint).
func (s *Store) WriteStep(ctx context.Context, step ir.Step) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, seq, tick, owner, handle, action, outcome, retries, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		step.RunID,
		step.Seq,
		int64(step.Tick),
		int64(step.Owner),
		step.Handle,
		step.Action,
		string(step.Outcome),
		step.Retries,
		step.Error,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}
