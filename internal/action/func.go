package action

// OneShot wraps a context-consuming function so it runs exactly once.
//
// The first Perform runs the function and returns Ready with its result;
// every later Perform returns Done without calling it again.
type OneShot[In, Ctx, Out any] struct {
	f    func(In, Ctx) Out
	done bool
}

// FromFunc wraps f as a one-shot action.
func FromFunc[In, Ctx, Out any](f func(In, Ctx) Out) *OneShot[In, Ctx, Out] {
	return &OneShot[In, Ctx, Out]{f: f}
}

// Call wraps a side-effecting function of the context as a one-shot action
// with unit input and output.
func Call[Ctx any](f func(Ctx)) *OneShot[Unit, Ctx, Unit] {
	return FromFunc(func(_ Unit, ctx Ctx) Unit {
		f(ctx)
		return Unit{}
	})
}

// Perform implements Action.
func (a *OneShot[In, Ctx, Out]) Perform(in In, ctx Ctx) Poll[Out] {
	if a.done {
		return Done[Out]()
	}
	a.done = true
	return Ready(a.f(in, ctx))
}
