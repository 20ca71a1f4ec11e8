package action

// RoundRobin drives a fixed set of sibling actions one slot per call.
//
// Slots are kept in place and retired by setting them to nil, so the cursor
// stays valid while siblings finish at different times. A full pass over the
// active slots produces exactly one Ready; every other call returns Pending,
// which makes the driving loop visit all siblings within the same tick.
type RoundRobin[In, Ctx any] struct {
	slots  []Action[In, Ctx, Unit]
	cursor int
}

// FromSlice builds a round-robin driver over actions.
// An empty set is Done on the first call.
func FromSlice[In, Ctx any](actions ...Action[In, Ctx, Unit]) *RoundRobin[In, Ctx] {
	slots := make([]Action[In, Ctx, Unit], len(actions))
	copy(slots, actions)
	return &RoundRobin[In, Ctx]{slots: slots}
}

// Perform implements Action.
func (r *RoundRobin[In, Ctx]) Perform(in In, ctx Ctx) Poll[Unit] {
	idx := r.nextActive(r.cursor)
	if idx < 0 {
		return Done[Unit]()
	}

	if r.slots[idx].Perform(in, ctx).IsDone() {
		r.slots[idx] = nil
	}

	if next := r.nextActive(idx + 1); next >= 0 {
		r.cursor = next
		return Pending[Unit]()
	}

	// End of pass. The cursor wraps even if every slot just retired; the
	// next call then reports Done.
	r.cursor = 0
	return Ready(Unit{})
}

// Active returns the number of slots that have not retired.
func (r *RoundRobin[In, Ctx]) Active() int {
	n := 0
	for _, s := range r.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// nextActive returns the first non-retired slot at or after from, or -1.
func (r *RoundRobin[In, Ctx]) nextActive(from int) int {
	for i := from; i < len(r.slots); i++ {
		if r.slots[i] != nil {
			return i
		}
	}
	return -1
}
