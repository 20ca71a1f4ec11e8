// Package bridge erases concrete actions into one uniform interface so that
// actions with different context types can share a queue.
//
// An erased action takes the World itself instead of a resolved context.
// Each call resolves the action's own Param against the World, performs the
// action, then applies whatever the Param deferred. This is the only place
// context resolution happens.
package bridge

import (
	"errors"
	"fmt"

	"github.com/roach88/tickseq/internal/action"
	"github.com/roach88/tickseq/internal/world"
)

// AnyAction is an action with unit input and output that resolves its own
// context from the World on every call.
//
// When the returned error is non-nil the action was not performed and the
// poll is meaningless.
type AnyAction interface {
	PerformAny(w *world.World) (action.Poll[action.Unit], error)
}

// ResolveError reports that an erased action could not resolve its context.
type ResolveError struct {
	Action string
	Err    error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve context for %s: %v", e.Action, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// IsResolveError reports whether err came from context resolution.
func IsResolveError(err error) bool {
	var re *ResolveError
	return errors.As(err, &re)
}

type erased[C any] struct {
	action action.Action[action.Unit, C, action.Unit]
	param  world.Param[C]
}

// Erase binds a to the Param that resolves its context.
// p must not be shared with another erased action.
func Erase[C any](a action.Action[action.Unit, C, action.Unit], p world.Param[C]) AnyAction {
	return &erased[C]{action: a, param: p}
}

// EraseExclusive erases an action that takes the whole World as context.
func EraseExclusive(a action.Action[action.Unit, *world.World, action.Unit]) AnyAction {
	return Erase(a, world.Exclusive())
}

func (e *erased[C]) PerformAny(w *world.World) (p action.Poll[action.Unit], err error) {
	// A nested erased action that fails to resolve unwinds through AsAction.
	// Writes this call already deferred are still applied.
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(*ResolveError)
			if !ok {
				panic(r)
			}
			e.param.Apply(w)
			p, err = action.Poll[action.Unit]{}, re
		}
	}()

	ctx, err := e.param.Fetch(w)
	if err != nil {
		return action.Poll[action.Unit]{}, &ResolveError{Action: e.Name(), Err: err}
	}
	p = e.action.Perform(action.Unit{}, ctx)
	e.param.Apply(w)
	return p, nil
}

// Name returns the concrete action type.
func (e *erased[C]) Name() string {
	return fmt.Sprintf("%T", e.action)
}

// worldAction lets an erased action be composed again.
type worldAction struct {
	inner AnyAction
}

// AsAction exposes an erased action as an action over the whole World, so
// erased actions can be children of the composition operators. Combine with
// EraseExclusive to push the composite.
//
// A resolution failure inside the child aborts the enclosing erased call and
// is returned from its PerformAny.
func AsAction(a AnyAction) action.Action[action.Unit, *world.World, action.Unit] {
	return &worldAction{inner: a}
}

func (a *worldAction) Perform(_ action.Unit, w *world.World) action.Poll[action.Unit] {
	p, err := a.inner.PerformAny(w)
	if err != nil {
		var re *ResolveError
		if !errors.As(err, &re) {
			re = &ResolveError{Action: Label(a.inner), Err: err}
		}
		panic(re)
	}
	return p
}

type named struct {
	AnyAction
	name string
}

// Named attaches a display name to a, used in logs and journals.
func Named(name string, a AnyAction) AnyAction {
	return &named{AnyAction: a, name: name}
}

func (n *named) Name() string { return n.name }

// Label returns the display name of a: the name given to Named, or the
// concrete action type.
func Label(a AnyAction) string {
	if n, ok := a.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", a)
}
