package action

import "time"

// Interpolation ramps a value from one endpoint to another over a duration.
//
// The start time is captured lazily on the first Perform, so building an
// Interpolation has no side effects and the value can be inspected or reused
// before it runs.
type Interpolation[T any] struct {
	from     T
	to       T
	hasTo    bool
	start    time.Duration
	started  bool
	duration time.Duration
	lerp     LerpFunc[T]
}

// Interpolate ramps a numeric value linearly from from to to over d.
func Interpolate[T Number](from, to T, d time.Duration) *Interpolation[T] {
	return InterpolateWith(from, to, d, Lerp[T])
}

// InterpolateWith ramps any value using lerp.
func InterpolateWith[T any](from, to T, d time.Duration, lerp LerpFunc[T]) *Interpolation[T] {
	return &Interpolation[T]{
		from:     from,
		to:       to,
		hasTo:    true,
		duration: d,
		lerp:     lerp,
	}
}

// Perform implements Action.
//
// While less than the duration has elapsed since the start, every call
// returns Ready with the interpolated value; it never returns Pending. The
// call on which the duration is reached returns Ready(to) exactly once, so
// the terminal value is always delivered verbatim. Every later call returns
// Done.
//
// The start is the beginning of the tick on which the first call happens
// (Elapsed minus Delta), so an action started mid-simulation is credited with
// the tick it first runs in.
func (a *Interpolation[T]) Perform(_ Unit, clock Clock) Poll[T] {
	if !a.hasTo {
		return Done[T]()
	}

	now := clock.Elapsed()
	if !a.started {
		a.start = now - clock.Delta()
		a.started = true
	}

	elapsed := now - a.start
	if elapsed < a.duration {
		t := float64(elapsed) / float64(a.duration)
		return Ready(a.lerp(a.from, a.to, t))
	}

	to := a.to
	var zero T
	a.to = zero
	a.hasTo = false
	return Ready(to)
}

// Started reports whether the start time has been captured.
func (a *Interpolation[T]) Started() bool {
	return a.started
}

// Finished reports whether the terminal value has been delivered.
func (a *Interpolation[T]) Finished() bool {
	return !a.hasTo
}
