package script

import (
	"fmt"

	"github.com/roach88/tickseq/internal/action"
	"github.com/roach88/tickseq/internal/bridge"
	"github.com/roach88/tickseq/internal/world"
)

type (
	unit      = action.Unit
	clockVars = action.Pair[action.Clock, *Vars]
)

// Compile validates n and builds a fresh erased action from it.
//
// Every call returns new action state, so one tree can be compiled once per
// owner. The returned action is named after the node kind.
func Compile(n Node) (bridge.AnyAction, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return compile(&n), nil
}

// CompileAll compiles each node in order.
func CompileAll(nodes []Node) ([]bridge.AnyAction, error) {
	out := make([]bridge.AnyAction, 0, len(nodes))
	for i, n := range nodes {
		a, err := Compile(n)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func compile(n *Node) bridge.AnyAction {
	switch {
	case n.Set != nil:
		return compileSet(n.Set)
	case n.Add != nil:
		return compileAdd(n.Add)
	case n.Emit != nil:
		return compileEmit(n.Emit)
	case n.Interpolate != nil:
		return compileInterpolate(n.Interpolate)
	case n.TweenBy != nil:
		return compileTweenBy(n.TweenBy)
	case n.Wait != nil:
		return compileWait(n.Wait)
	case n.Sequence != nil:
		return compileSequence(n.Sequence)
	case n.Parallel != nil:
		return compileParallel(n.Parallel)
	}
	// Validate rejects empty nodes.
	panic("script: compile of empty node")
}

func compileSet(s *SetNode) bridge.AnyAction {
	name, value := s.Var, s.Value
	a := action.Call(func(v *Vars) { v.Set(name, value) })
	return bridge.Named("set "+name, bridge.Erase(a, world.Res[Vars]()))
}

func compileAdd(s *AddNode) bridge.AnyAction {
	name, delta := s.Var, s.Delta
	a := action.Call(func(v *Vars) { v.Add(name, delta) })
	return bridge.Named("add "+name, bridge.Erase(a, world.Res[Vars]()))
}

func compileEmit(s *EmitNode) bridge.AnyAction {
	event := s.Event
	a := action.Call(func(ctx action.Pair[*Events, *world.Time]) {
		ctx.First.Append(Event{Tick: ctx.Second.Tick(), Name: event})
	})
	p := world.Join(world.Res[Events](), world.Res[world.Time]())
	return bridge.Named("emit "+event, bridge.Erase(a, p))
}

// writeVar returns the continuation that stores one interpolated value.
func writeVar(name string) func(float64) action.Action[unit, *Vars, unit] {
	return func(x float64) action.Action[unit, *Vars, unit] {
		return action.Call(func(v *Vars) { v.Set(name, x) })
	}
}

func compileInterpolate(s *InterpolateNode) bridge.AnyAction {
	name := s.Var
	ramp := action.Interpolate(s.From, s.To, s.Duration.Std())
	a := action.ForEach[unit, action.Clock, float64, *Vars](ramp, func(x float64, v *Vars) { v.Set(name, x) })
	p := world.Join(world.ClockParam(), world.Res[Vars]())
	return bridge.Named("interpolate "+name, bridge.Erase(a, p))
}

// compileTweenBy reads the var once, on the node's first tick, and ramps
// from there. Each value is written by a continuation built with Map, so
// inside a parallel node the write lands one pass after the value is
// sampled.
func compileTweenBy(s *TweenByNode) bridge.AnyAction {
	name, by, d := s.Var, s.By, s.Duration.Std()
	read := action.FromFunc(func(_ unit, v *Vars) float64 { return v.Get(name) })
	a := action.AndThen[unit, *Vars, float64, clockVars, unit](read, func(cur float64) action.Action[unit, clockVars, unit] {
		return action.Map[unit, action.Clock, float64, *Vars, unit](action.Interpolate(cur, cur+by, d), writeVar(name))
	})
	p := world.Join(world.Res[Vars](), world.Join(world.ClockParam(), world.Res[Vars]()))
	return bridge.Named("tween_by "+name, bridge.Erase(a, p))
}

func compileWait(s *WaitNode) bridge.AnyAction {
	a := action.ForEach[unit, action.Clock, float64, unit](action.Interpolate(0.0, 1.0, s.Duration.Std()), func(float64, unit) {})
	p := world.Join(world.ClockParam(), world.None())
	return bridge.Named("wait "+s.Duration.Std().String(), bridge.Erase(a, p))
}

func children(nodes []Node) []action.Action[unit, *world.World, unit] {
	out := make([]action.Action[unit, *world.World, unit], len(nodes))
	for i := range nodes {
		out[i] = bridge.AsAction(compile(&nodes[i]))
	}
	return out
}

func compileSequence(nodes []Node) bridge.AnyAction {
	kids := children(nodes)
	name := fmt.Sprintf("sequence(%d)", len(kids))
	if len(kids) == 2 {
		a := action.Then(kids[0], kids[1])
		return bridge.Named(name, bridge.Erase(a, world.Join(world.Exclusive(), world.Exclusive())))
	}
	return bridge.Named(name, bridge.EraseExclusive(action.Sequence(kids...)))
}

func compileParallel(nodes []Node) bridge.AnyAction {
	name := fmt.Sprintf("parallel(%d)", len(nodes))
	return bridge.Named(name, bridge.EraseExclusive(action.FromSlice(children(nodes)...)))
}
