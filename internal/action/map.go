package action

// MapAction feeds every output of a source into a freshly built continuation.
type MapAction[In, CA, OA, CB, OB any] struct {
	source Action[In, CA, OA]
	f      func(OA) Action[Unit, CB, OB]
	next   Action[Unit, CB, OB]
}

// Map builds, for each output of a, a continuation f(out) that runs with
// unit input until it is Done, and then resumes a.
//
// Constructing a continuation returns Pending. The continuation's Ready and
// Pending results are forwarded unchanged. When the continuation is Done it
// is dropped and a is polled again within the same call. Map is Done when a
// is Done.
func Map[In, CA, OA, CB, OB any](a Action[In, CA, OA], f func(OA) Action[Unit, CB, OB]) *MapAction[In, CA, OA, CB, OB] {
	return &MapAction[In, CA, OA, CB, OB]{source: a, f: f}
}

// Perform implements Action.
func (m *MapAction[In, CA, OA, CB, OB]) Perform(in In, ctx Pair[CA, CB]) Poll[OB] {
	if m.next != nil {
		p := m.next.Perform(Unit{}, ctx.Second)
		if !p.IsDone() {
			return p
		}
		m.next = nil
	}
	return m.pollSource(in, ctx.First)
}

func (m *MapAction[In, CA, OA, CB, OB]) pollSource(in In, ctx CA) Poll[OB] {
	p := m.source.Perform(in, ctx)
	switch p.State() {
	case StateReady:
		out, _ := p.Value()
		m.next = m.f(out)
		return Pending[OB]()
	case StateDone:
		return Done[OB]()
	default:
		return Pending[OB]()
	}
}
