package action

// PollState distinguishes the three outcomes of a single Perform call.
type PollState uint8

const (
	// StatePending means internal progress was made and the caller must
	// poll again immediately, within the same tick.
	StatePending PollState = iota + 1
	// StateReady means one visible output was produced.
	StateReady
	// StateDone means the action is exhausted.
	StateDone
)

// String returns the state name used in logs and traces.
func (s PollState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateDone:
		return "done"
	default:
		return "invalid"
	}
}

// Poll is the result of Action.Perform.
//
// The zero Poll is invalid; build results with Ready, Done or Pending.
type Poll[T any] struct {
	state PollState
	value T
}

// Ready reports one visible unit of output.
func Ready[T any](v T) Poll[T] {
	return Poll[T]{state: StateReady, value: v}
}

// Done reports that the action is exhausted.
func Done[T any]() Poll[T] {
	return Poll[T]{state: StateDone}
}

// Pending asks the caller to poll again immediately.
func Pending[T any]() Poll[T] {
	return Poll[T]{state: StatePending}
}

// State returns which of the three outcomes p holds.
func (p Poll[T]) State() PollState {
	return p.state
}

// IsReady reports whether p carries a visible output.
func (p Poll[T]) IsReady() bool {
	return p.state == StateReady
}

// IsDone reports whether the polled action is exhausted.
func (p Poll[T]) IsDone() bool {
	return p.state == StateDone
}

// IsPending reports whether the caller must retry immediately.
func (p Poll[T]) IsPending() bool {
	return p.state == StatePending
}

// Value returns the output carried by a Ready poll.
// The boolean is false for Pending and Done.
func (p Poll[T]) Value() (T, bool) {
	return p.value, p.state == StateReady
}

// String renders p for diagnostics.
func (p Poll[T]) String() string {
	return p.state.String()
}
