package script

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/world"
)

func TestCompile_Set(t *testing.T) {
	r := newRig(t)
	r.push(`set: {var: x, value: 7}`)

	r.step()
	assert.Equal(t, 7.0, r.vars.Get("x"))
	assert.False(t, r.seq.Idle())

	r.step()
	assert.True(t, r.seq.Idle())
}

func TestCompile_AddAccumulates(t *testing.T) {
	r := newRig(t)
	r.vars.Set("x", 1)
	r.push(`add: {var: x, delta: 2}`)
	r.push(`add: {var: x, delta: 3}`)

	assert.Equal(t, []float64{3, 3, 6, 6}, r.trace("x", 4))
	assert.True(t, r.seq.Idle())
}

func TestCompile_EmitRecordsTick(t *testing.T) {
	r := newRig(t)
	r.push(`emit: {event: start}`)
	r.push(`emit: {event: stop}`)

	for i := 0; i < 4; i++ {
		r.step()
	}

	assert.Equal(t, []Event{{Tick: 1, Name: "start"}, {Tick: 3, Name: "stop"}}, r.events.All())
}

func TestCompile_InterpolateRamp(t *testing.T) {
	r := newRig(t)
	r.push(`interpolate: {var: x, from: 0, to: 100, duration: 4s}`)

	assert.Equal(t, []float64{25, 50, 75, 100}, r.trace("x", 4))
	assert.False(t, r.seq.Idle())

	r.step()
	assert.True(t, r.seq.Idle())
	assert.Equal(t, 100.0, r.vars.Get("x"))
}

func TestCompile_TweenByStartsFromCurrentValue(t *testing.T) {
	r := newRig(t)
	r.vars.Set("x", 10)
	r.push(`tween_by: {var: x, by: 10, duration: 2s}`)

	assert.Equal(t, []float64{15, 20}, r.trace("x", 2))

	r.step()
	assert.True(t, r.seq.Idle())
}

func TestCompile_TweenByReadsWhenStarted(t *testing.T) {
	r := newRig(t)
	r.push(`set: {var: x, value: 50}`)
	r.push(`tween_by: {var: x, by: -50, duration: 1s}`)

	// set yields on tick 1 and completes on tick 2, the tween starts on
	// tick 3.
	assert.Equal(t, []float64{50, 50, 0}, r.trace("x", 3))
}

func TestCompile_WaitDelaysNext(t *testing.T) {
	r := newRig(t)
	r.push(`
sequence:
  - wait: {duration: 2s}
  - set: {var: x, value: 1}
`)

	// Wait yields on ticks 1 and 2 and is done on tick 3, where the set
	// runs in the same call.
	assert.Equal(t, []float64{0, 0, 1}, r.trace("x", 3))
}

func TestCompile_SequenceRunsChildrenInOrder(t *testing.T) {
	r := newRig(t)
	r.push(`
sequence:
  - emit: {event: a}
  - emit: {event: b}
  - emit: {event: c}
`)

	for i := 0; i < 4; i++ {
		r.step()
	}
	assert.Equal(t, []Event{{1, "a"}, {2, "b"}, {3, "c"}}, r.events.All())
	assert.True(t, r.seq.Idle())
}

func TestCompile_TwoChildSequence(t *testing.T) {
	r := newRig(t)
	r.push(`
sequence:
  - interpolate: {var: x, from: 0, to: 10, duration: 2s}
  - interpolate: {var: y, from: 0, to: 10, duration: 2s}
`)

	r.step()
	r.step()
	assert.Equal(t, 10.0, r.vars.Get("x"))
	assert.Equal(t, 0.0, r.vars.Get("y"))

	r.step()
	assert.Equal(t, 5.0, r.vars.Get("y"))
	r.step()
	assert.Equal(t, 10.0, r.vars.Get("y"))
	r.step()
	assert.True(t, r.seq.Idle())
}

func TestCompile_ParallelAdvancesSiblingsEachTick(t *testing.T) {
	r := newRig(t)
	r.push(`
parallel:
  - interpolate: {var: x, from: 0, to: 10, duration: 2s}
  - interpolate: {var: y, from: 0, to: 100, duration: 2s}
`)

	r.step()
	assert.Equal(t, 5.0, r.vars.Get("x"))
	assert.Equal(t, 50.0, r.vars.Get("y"))

	r.step()
	assert.Equal(t, 10.0, r.vars.Get("x"))
	assert.Equal(t, 100.0, r.vars.Get("y"))

	r.step()
	assert.False(t, r.seq.Idle())
	r.step()
	assert.True(t, r.seq.Idle())
}

func TestCompile_EmptySequenceCompletesImmediately(t *testing.T) {
	a, err := Compile(Node{Sequence: []Node{}})
	require.NoError(t, err)

	w := world.New()
	p, err := a.PerformAny(w)
	require.NoError(t, err)
	assert.True(t, p.IsDone())
}

func TestCompile_MissingVarsResourceFailsResolution(t *testing.T) {
	a, err := Compile(Node{Set: &SetNode{Var: "x", Value: 1}})
	require.NoError(t, err)

	_, err = a.PerformAny(world.New())
	require.Error(t, err)
	assert.True(t, bridge.IsResolveError(err))
	assert.True(t, world.IsResolveError(err))
}

func TestCompile_NestedResolutionFailureSurfaces(t *testing.T) {
	a, err := Compile(Node{Sequence: []Node{
		{Emit: &EmitNode{Event: "a"}},
		{Emit: &EmitNode{Event: "b"}},
	}})
	require.NoError(t, err)

	w := world.New()
	Install(w)
	// No Time resource: emit cannot resolve.
	_, err = a.PerformAny(w)
	require.Error(t, err)
	assert.True(t, bridge.IsResolveError(err))
}

func TestCompile_Names(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{Node{Set: &SetNode{Var: "x"}}, "set x"},
		{Node{Emit: &EmitNode{Event: "go"}}, "emit go"},
		{Node{Wait: &WaitNode{Duration: Duration(1500 * time.Millisecond)}}, "wait 1.5s"},
		{Node{Parallel: []Node{{Set: &SetNode{Var: "x"}}}}, "parallel(1)"},
		{Node{Sequence: []Node{{Set: &SetNode{Var: "x"}}, {Set: &SetNode{Var: "y"}}}}, "sequence(2)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a, err := Compile(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bridge.Label(a))
		})
	}
}

func TestCompile_FreshStatePerCall(t *testing.T) {
	n := Node{Set: &SetNode{Var: "x", Value: 1}}
	a, err := Compile(n)
	require.NoError(t, err)
	b, err := Compile(n)
	require.NoError(t, err)

	w := world.New()
	Install(w)

	p, err := a.PerformAny(w)
	require.NoError(t, err)
	assert.True(t, p.IsReady())

	p, err = b.PerformAny(w)
	require.NoError(t, err)
	assert.True(t, p.IsReady(), "second compilation must not share the first's one-shot state")
}

func TestCompileAll_ReportsIndex(t *testing.T) {
	_, err := CompileAll([]Node{
		{Set: &SetNode{Var: "x"}},
		{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 1")
}

func TestCompile_DrivenWithoutEngine(t *testing.T) {
	a, err := Compile(Node{Add: &AddNode{Var: "n", Delta: 1}})
	require.NoError(t, err)

	w := world.New()
	vars, _ := Install(w)
	p, err := a.PerformAny(w)
	require.NoError(t, err)
	assert.True(t, p.IsReady())
	p, err = a.PerformAny(w)
	require.NoError(t, err)
	assert.True(t, p.IsDone())
	assert.Equal(t, 1.0, vars.Get("n"))
}
