package testutil

import (
	"sync"
	"time"
)

// ManualClock is a simulation clock that only moves when a test advances it.
//
// It satisfies action.Clock, so leaf actions can be driven tick by tick
// without a world or an engine. Each Advance covers one tick: Delta is the
// step just taken and Elapsed the running total.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
	delta   time.Duration
	ticks   int64
}

// NewManualClock creates a clock at zero elapsed time.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Advance moves the clock forward by d and counts one tick.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += d
	c.delta = d
	c.ticks++
}

// Elapsed returns the total time advanced so far.
func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Delta returns the step of the most recent Advance.
func (c *ManualClock) Delta() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delta
}

// Ticks returns how many times Advance was called.
func (c *ManualClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset returns the clock to zero.
//
// Used for test reuse.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed = 0
	c.delta = 0
	c.ticks = 0
}
