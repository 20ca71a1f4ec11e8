package action

// ThenAction runs a to exhaustion, then b.
type ThenAction[In, CA, CB, Out any] struct {
	a    Action[In, CA, Out]
	b    Action[In, CB, Out]
	next bool
}

// Then runs a until it is Done and then switches permanently to b.
//
// Results of a are forwarded unchanged except its Done, which becomes
// Pending so the caller immediately polls b. Once switched, b's results are
// forwarded verbatim, including its Done.
func Then[In, CA, CB, Out any](a Action[In, CA, Out], b Action[In, CB, Out]) *ThenAction[In, CA, CB, Out] {
	return &ThenAction[In, CA, CB, Out]{a: a, b: b}
}

// Perform implements Action.
func (t *ThenAction[In, CA, CB, Out]) Perform(in In, ctx Pair[CA, CB]) Poll[Out] {
	if t.next {
		return t.b.Perform(in, ctx.Second)
	}

	p := t.a.Perform(in, ctx.First)
	if p.IsDone() {
		t.next = true
		return Pending[Out]()
	}
	return p
}
