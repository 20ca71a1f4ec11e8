package action

// SequenceAction runs a list of actions one after another.
type SequenceAction[In, Ctx, Out any] struct {
	actions []Action[In, Ctx, Out]
	cursor  int
}

// Sequence is the n-ary form of Then for actions sharing one context type.
//
// Each action's Ready and Pending results are forwarded unchanged. When an
// action other than the last is Done, the sequence advances and returns
// Pending. The Done of the last action ends the sequence. An empty sequence
// is Done on the first call.
func Sequence[In, Ctx, Out any](actions ...Action[In, Ctx, Out]) *SequenceAction[In, Ctx, Out] {
	list := make([]Action[In, Ctx, Out], len(actions))
	copy(list, actions)
	return &SequenceAction[In, Ctx, Out]{actions: list}
}

// Perform implements Action.
func (s *SequenceAction[In, Ctx, Out]) Perform(in In, ctx Ctx) Poll[Out] {
	if s.cursor >= len(s.actions) {
		return Done[Out]()
	}

	p := s.actions[s.cursor].Perform(in, ctx)
	if !p.IsDone() {
		return p
	}

	s.actions[s.cursor] = nil
	s.cursor++
	if s.cursor < len(s.actions) {
		return Pending[Out]()
	}
	return p
}

// Remaining returns how many actions have not finished yet.
func (s *SequenceAction[In, Ctx, Out]) Remaining() int {
	return len(s.actions) - s.cursor
}
