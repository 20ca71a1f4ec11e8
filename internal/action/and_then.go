package action

// AndThenAction turns the first output of a into a follow-up action.
type AndThenAction[In, CA, OA, CB, OB any] struct {
	first Action[In, CA, OA]
	f     func(OA) Action[In, CB, OB]
	next  Action[In, CB, OB]
	done  bool
}

// AndThen polls a until it produces an output, builds b = f(out) and from
// then on drives b with the original input.
//
// Building b returns Pending. b's Ready and Pending results are forwarded
// unchanged; when b is Done the whole combinator is Done. Unlike Map, a is
// never resumed: this is a one-shot transformation, not a cycle. If a is
// Done before producing anything, AndThen is Done.
func AndThen[In, CA, OA, CB, OB any](a Action[In, CA, OA], f func(OA) Action[In, CB, OB]) *AndThenAction[In, CA, OA, CB, OB] {
	return &AndThenAction[In, CA, OA, CB, OB]{first: a, f: f}
}

// Perform implements Action.
func (a *AndThenAction[In, CA, OA, CB, OB]) Perform(in In, ctx Pair[CA, CB]) Poll[OB] {
	if a.done {
		return Done[OB]()
	}

	if a.next != nil {
		p := a.next.Perform(in, ctx.Second)
		if p.IsDone() {
			a.next = nil
			a.done = true
		}
		return p
	}

	p := a.first.Perform(in, ctx.First)
	switch p.State() {
	case StateReady:
		out, _ := p.Value()
		a.next = a.f(out)
		return Pending[OB]()
	case StateDone:
		a.done = true
		return Done[OB]()
	default:
		return Pending[OB]()
	}
}
