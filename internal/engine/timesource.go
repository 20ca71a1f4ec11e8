package engine

import (
	"sync"
	"time"
)

// TimeSource maps a tick number to the total elapsed time at that tick.
type TimeSource interface {
	Elapsed(tick uint64) time.Duration
}

// FixedStep advances simulated time by a constant amount per tick.
// Tick n is at n*step. Runs driven by FixedStep are fully deterministic.
type FixedStep time.Duration

// Elapsed implements TimeSource.
func (s FixedStep) Elapsed(tick uint64) time.Duration {
	return time.Duration(tick) * time.Duration(s)
}

// WallClock reports real time since its first use.
type WallClock struct {
	once  sync.Once
	start time.Time
	now   func() time.Time
}

// NewWallClock returns a WallClock reading time.Now.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

// Elapsed implements TimeSource. The first call defines time zero.
func (c *WallClock) Elapsed(uint64) time.Duration {
	if c.now == nil {
		c.now = time.Now
	}
	c.once.Do(func() { c.start = c.now() })
	return c.now().Sub(c.start)
}
