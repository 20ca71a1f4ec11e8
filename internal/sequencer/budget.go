package sequencer

import (
	"errors"
	"fmt"

	"github.com/roach88/tickseq/internal/world"
)

// retryBudget counts Pending results within one step and enforces an
// optional limit.
//
// A limit of zero means unlimited: a non-productive action then spins
// forever, which is the action author's bug to fix.
type retryBudget struct {
	limit   int
	retries int
}

func newRetryBudget(limit int) *retryBudget {
	return &retryBudget{limit: limit}
}

// retry records one Pending result. It returns false once the limit is
// exceeded.
func (b *retryBudget) retry() bool {
	b.retries++
	return b.limit <= 0 || b.retries <= b.limit
}

// RetryLimitError is returned when the front action of an owner keeps
// reporting Pending past the configured budget within one tick.
//
// The handle is left at the front of the queue and is retried with a fresh
// budget on the next tick.
type RetryLimitError struct {
	Owner   world.Entity
	Action  string
	Tick    uint64
	Retries int
	Limit   int
}

// Error implements the error interface.
func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("owner %d action %s exceeded retry limit at tick %d: %d retries > %d limit",
		e.Owner, e.Action, e.Tick, e.Retries, e.Limit)
}

// IsRetryLimitError reports whether err is a RetryLimitError.
// Uses errors.As to handle wrapped errors.
func IsRetryLimitError(err error) bool {
	var re *RetryLimitError
	return errors.As(err, &re)
}

// ActionPanicError is returned when the front action of an owner panics.
// Other owners still run in the same tick.
type ActionPanicError struct {
	Owner  world.Entity
	Action string
	Tick   uint64
	Value  any
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("owner %d action %s panicked at tick %d: %v", e.Owner, e.Action, e.Tick, e.Value)
}

// IsActionPanicError reports whether err is an ActionPanicError.
func IsActionPanicError(err error) bool {
	var pe *ActionPanicError
	return errors.As(err, &pe)
}
