package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tickseq/internal/ir"
)

// NotFoundError is returned when a requested record does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, status, ticks FROM runs WHERE id = ?
	`, id)

	var run ir.Run
	var status string
	var ticks int64
	if err := row.Scan(&run.ID, &run.Scenario, &status, &ticks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, &NotFoundError{Kind: "run", ID: id}
		}
		return ir.Run{}, fmt.Errorf("read run: %w", err)
	}
	run.Status = ir.RunStatus(status)
	run.Ticks = uint64(ticks)
	return run, nil
}

// ListRuns returns every run ordered by id.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, status, ticks FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var run ir.Run
		var status string
		var ticks int64
		if err := rows.Scan(&run.ID, &run.Scenario, &status, &ticks); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = ir.RunStatus(status)
		run.Ticks = uint64(ticks)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the steps of a run in seq order.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]ir.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, tick, owner, handle, action, outcome, retries, error
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func scanStep(rows *sql.Rows) (ir.Step, error) {
	var step ir.Step
	var tick, owner int64
	var outcome string
	err := rows.Scan(
		&step.RunID,
		&step.Seq,
		&tick,
		&owner,
		&step.Handle,
		&step.Action,
		&outcome,
		&step.Retries,
		&step.Error,
	)
	if err != nil {
		return ir.Step{}, fmt.Errorf("scan step: %w", err)
	}
	step.Tick = uint64(tick)
	step.Owner = uint64(owner)
	step.Outcome = ir.Outcome(outcome)
	return step, nil
}

// CountSteps returns how many steps of a run have the given outcome.
// An empty outcome counts every step.
func (s *Store) CountSteps(ctx context.Context, runID string, outcome ir.Outcome) (int, error) {
	var n int
	var err error
	if outcome == "" {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM steps WHERE run_id = ?
		`, runID).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM steps WHERE run_id = ? AND outcome = ?
		`, runID, string(outcome)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count steps: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq journaled for a run, or 0.
// Used to resume the logical clock when a run continues.
func (s *Store) LastSeq(ctx context.Context, runID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM steps WHERE run_id = ?
	`, runID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
