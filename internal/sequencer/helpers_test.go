package sequencer

import (
	"io"
	"log/slog"

	"github.com/roach88/tickseq/internal/action"
	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/world"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// script returns an erased action that plays back polls in order and is
// Done afterwards. calls counts every perform.
func script(calls *int, polls ...action.PollState) bridge.AnyAction {
	i := 0
	a := action.PerformFunc[action.Unit, action.Unit, action.Unit](func(action.Unit, action.Unit) action.Poll[action.Unit] {
		*calls++
		if i >= len(polls) {
			return action.Done[action.Unit]()
		}
		s := polls[i]
		i++
		switch s {
		case action.StateReady:
			return action.Ready(action.Unit{})
		case action.StatePending:
			return action.Pending[action.Unit]()
		default:
			return action.Done[action.Unit]()
		}
	})
	return bridge.Erase[action.Unit](a, world.None())
}

// yields returns an action that yields n times and is then Done.
func yields(calls *int, n int) bridge.AnyAction {
	polls := make([]action.PollState, n)
	for i := range polls {
		polls[i] = action.StateReady
	}
	return script(calls, polls...)
}

// newOwner spawns an entity with an empty Sequencer.
func newOwner(w *world.World) (world.Entity, *Sequencer) {
	e := w.Spawn()
	s, _ := Attach(w, e)
	return e, s
}
