package action

// ForEachAction hands every output of a source to a sink function.
type ForEachAction[In, CA, OA, CB any] struct {
	source Action[In, CA, OA]
	sink   func(OA, CB)
}

// ForEach calls sink with every visible output of a and the sink's own
// context, then yields. Pending and Done pass through.
func ForEach[In, CA, OA, CB any](a Action[In, CA, OA], sink func(OA, CB)) *ForEachAction[In, CA, OA, CB] {
	return &ForEachAction[In, CA, OA, CB]{source: a, sink: sink}
}

// Perform implements Action.
func (f *ForEachAction[In, CA, OA, CB]) Perform(in In, ctx Pair[CA, CB]) Poll[Unit] {
	p := f.source.Perform(in, ctx.First)
	switch p.State() {
	case StateReady:
		out, _ := p.Value()
		f.sink(out, ctx.Second)
		return Ready(Unit{})
	case StateDone:
		return Done[Unit]()
	default:
		return Pending[Unit]()
	}
}
