package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tickseq/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a running run.
func createTestRun(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.BeginRun(context.Background(), ir.Run{ID: id, Scenario: "test"}); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
}

// createTestStep creates a step with minimal required fields.
func createTestStep(runID string, seq int64, tick uint64, outcome ir.Outcome) ir.Step {
	return ir.Step{
		RunID:   runID,
		Seq:     seq,
		Tick:    tick,
		Owner:   1,
		Handle:  1,
		Action:  "test-action",
		Outcome: outcome,
	}
}
