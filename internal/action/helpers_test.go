package action

// countdown yields n, n-1, ..., 1 on successive calls and is then Done.
type countdown struct {
	n     int
	calls int
}

func (c *countdown) Perform(_ Unit, _ Unit) Poll[int] {
	c.calls++
	if c.n == 0 {
		return Done[int]()
	}
	out := c.n
	c.n--
	return Ready(out)
}

// steps yields once per call, tagging each output, then is Done.
type steps struct {
	tag   string
	n     int
	calls int
}

func (s *steps) Perform(_ Unit, _ Unit) Poll[string] {
	s.calls++
	if s.n == 0 {
		return Done[string]()
	}
	s.n--
	return Ready(s.tag)
}

// unitSteps is steps with unit output, for FromSlice.
type unitSteps struct {
	n     int
	calls int
}

func (s *unitSteps) Perform(_ Unit, _ Unit) Poll[Unit] {
	s.calls++
	if s.n == 0 {
		return Done[Unit]()
	}
	s.n--
	return Ready(Unit{})
}

// tick polls a until it stops returning Pending, as the sequencer does for
// one tick, and returns the final poll and the number of Pending retries.
func tick[In, Ctx, Out any](a Action[In, Ctx, Out], in In, ctx Ctx) (Poll[Out], int) {
	for retries := 0; ; retries++ {
		p := a.Perform(in, ctx)
		if !p.IsPending() {
			return p, retries
		}
		if retries > 1000 {
			panic("action is not productive")
		}
	}
}

// runTicks drives a tick by tick until Done and returns the visible outputs.
func runTicks[In, Ctx, Out any](a Action[In, Ctx, Out], in In, ctx Ctx) []Out {
	var out []Out
	for i := 0; i < 1000; i++ {
		p, _ := tick(a, in, ctx)
		v, ok := p.Value()
		if !ok {
			return out
		}
		out = append(out, v)
	}
	panic("action never finished")
}
