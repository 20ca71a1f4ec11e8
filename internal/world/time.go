package world

import "time"

// Time is the resource the host updates at the start of every tick.
// It satisfies action.Clock.
type Time struct {
	tick    uint64
	elapsed time.Duration
	delta   time.Duration
}

// Tick returns the number of the current tick, starting at 1.
func (t *Time) Tick() uint64 { return t.tick }

// Elapsed returns the total simulated time at the current tick.
func (t *Time) Elapsed() time.Duration { return t.elapsed }

// Delta returns the time covered by the current tick.
func (t *Time) Delta() time.Duration { return t.delta }

// Advance moves the clock to tick at elapsed and derives Delta from the
// previous value. Elapsed never runs backwards.
func (t *Time) Advance(tick uint64, elapsed time.Duration) {
	if elapsed < t.elapsed {
		elapsed = t.elapsed
	}
	t.delta = elapsed - t.elapsed
	t.elapsed = elapsed
	t.tick = tick
}
