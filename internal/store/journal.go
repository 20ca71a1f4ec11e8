package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/tickseq/internal/ir"
)

// Journal writes every observed step to a Store.
//
// It satisfies the sequencer's Observer interface. Write failures do not
// interrupt the tick; the first one is kept and reported by Err.
type Journal struct {
	store  *Store
	logger *slog.Logger

	mu      sync.Mutex
	err     error
	written int
}

// NewJournal creates a journal over s.
func NewJournal(s *Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: s, logger: logger}
}

// ObserveStep journals step.
func (j *Journal) ObserveStep(step ir.Step) {
	err := j.store.WriteStep(context.Background(), step)

	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.logger.Error("journal write failed", "run", step.RunID, "seq", step.Seq, "error", err)
		if j.err == nil {
			j.err = err
		}
		return
	}
	j.written++
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Written returns the number of steps journaled successfully.
func (j *Journal) Written() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written
}
