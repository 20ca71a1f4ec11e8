package action

import "time"

// Unit is the empty input and output type.
type Unit = struct{}

// Action is a unit of deferred, time-extended work.
//
// In is the input handed to every Perform call, Ctx is the externally
// resolved dependency set, Out is the visible output type.
//
// Perform must not be called again after it returned Done; the built-in
// operators assume monotonic termination.
type Action[In, Ctx, Out any] interface {
	Perform(in In, ctx Ctx) Poll[Out]
}

// PerformFunc adapts an ordinary function to the Action interface.
// The function is called on every Perform; it owns its own state.
type PerformFunc[In, Ctx, Out any] func(in In, ctx Ctx) Poll[Out]

// Perform calls f.
func (f PerformFunc[In, Ctx, Out]) Perform(in In, ctx Ctx) Poll[Out] {
	return f(in, ctx)
}

// Pair is the context of a two-child operator. First is resolved for the
// first child and Second for the second (or for the continuation).
type Pair[A, B any] struct {
	First  A
	Second B
}

// Clock is the time source Interpolate samples.
//
// Elapsed is the total simulated time at the current tick and Delta the time
// the current tick covers. Both are injected by the host; nothing in this
// package sleeps or reads the wall clock.
type Clock interface {
	Elapsed() time.Duration
	Delta() time.Duration
}
