package sequencer

import (
	"github.com/roach88/tickseq/internal/action"
	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/world"
)

// Sequencer is the per-owner action queue.
//
// Attach one to an owner entity with Attach or world.Insert. Producers
// call Push at any time; the Driver consumes the queue once per tick.
type Sequencer struct {
	waiting fifo[bridge.AnyAction]
	running fifo[*handle]
}

// handle is a promoted action. Only the front handle is ever invoked.
type handle struct {
	id     int64
	owner  world.Entity
	action bridge.AnyAction
	label  string
}

// New returns an empty Sequencer.
func New() *Sequencer {
	return &Sequencer{}
}

// Attach returns the Sequencer of owner, inserting an empty one if the owner
// has none. It returns false if owner is not alive.
func Attach(w *world.World, owner world.Entity) (*Sequencer, bool) {
	if s, ok := world.Get[Sequencer](w, owner); ok {
		return s, true
	}
	s := New()
	if !world.Insert(w, owner, s) {
		return nil, false
	}
	return s, true
}

// Push appends an erased action to the waiting queue. It starts on the tick
// after it reaches the front of the running queue.
func (s *Sequencer) Push(a bridge.AnyAction) {
	s.waiting.push(a)
}

// PushAction erases a with the Param that resolves its context and pushes it.
func PushAction[C any](s *Sequencer, a action.Action[action.Unit, C, action.Unit], p world.Param[C]) {
	s.Push(bridge.Erase(a, p))
}

// Waiting returns the number of actions not yet promoted.
func (s *Sequencer) Waiting() int { return s.waiting.len() }

// Running returns the number of promoted handles, including the active one.
func (s *Sequencer) Running() int { return s.running.len() }

// Len returns the total number of queued actions.
func (s *Sequencer) Len() int { return s.waiting.len() + s.running.len() }

// Idle reports whether both queues are empty.
func (s *Sequencer) Idle() bool { return s.Len() == 0 }

// Clear drops every queued and running action without calling them again.
// No teardown hook runs on the active action.
func (s *Sequencer) Clear() {
	s.waiting.clear()
	s.running.clear()
}

// Active returns the label of the front handle, if any.
func (s *Sequencer) Active() (string, bool) {
	h, ok := s.running.front()
	if !ok {
		return "", false
	}
	return h.label, true
}
