package script

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/sequencer"
	"github.com/roach88/tickseq/internal/world"
)

type rig struct {
	t      *testing.T
	engine *engine.Engine
	vars   *Vars
	events *Events
	owner  world.Entity
	seq    *sequencer.Sequencer
}

// newRig builds a one-second fixed-step engine with one owner.
func newRig(t *testing.T) *rig {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := world.New()
	e := engine.New(w,
		engine.WithTimeSource(engine.FixedStep(time.Second)),
		engine.WithLogger(quiet))
	e.AddPlugins(sequencer.Plugin{Options: []sequencer.DriverOption{sequencer.WithLogger(quiet)}})

	vars, events := Install(w)
	owner := w.Spawn()
	seq, ok := sequencer.Attach(w, owner)
	require.True(t, ok)

	return &rig{t: t, engine: e, vars: vars, events: events, owner: owner, seq: seq}
}

// push compiles a YAML node and queues it on the owner.
func (r *rig) push(src string) {
	r.t.Helper()
	var n Node
	require.NoError(r.t, yaml.Unmarshal([]byte(src), &n))
	a, err := Compile(n)
	require.NoError(r.t, err)
	r.seq.Push(a)
}

func (r *rig) step() {
	r.t.Helper()
	require.NoError(r.t, r.engine.Step(context.Background()))
}

// trace steps n ticks and returns var after each.
func (r *rig) trace(name string, n int) []float64 {
	r.t.Helper()
	out := make([]float64, n)
	for i := range out {
		r.step()
		out[i] = r.vars.Get(name)
	}
	return out
}
