package world

import (
	"github.com/roach88/tickseq/internal/action"
)

// Param resolves a context value of type C against a World.
//
// Fetch is called before every perform and must not retain the World. Apply
// is called after perform returns and writes back anything the resolved
// value deferred (for example queued Commands). A Param may keep state
// between calls; each erased action owns its own Param.
type Param[C any] interface {
	Fetch(w *World) (C, error)
	Apply(w *World)
}

// ParamFunc adapts a fetch function with no deferred writes.
type ParamFunc[C any] func(w *World) (C, error)

// Fetch calls f.
func (f ParamFunc[C]) Fetch(w *World) (C, error) { return f(w) }

// Apply does nothing.
func (f ParamFunc[C]) Apply(*World) {}

// Res resolves the singleton resource of type T.
func Res[T any]() Param[*T] {
	return ParamFunc[*T](func(w *World) (*T, error) {
		r, ok := Resource[T](w)
		if !ok {
			return nil, &MissingResourceError{Type: typeName[T]()}
		}
		return r, nil
	})
}

// OptionalRes resolves the resource of type T, or nil if it is absent.
func OptionalRes[T any]() Param[*T] {
	return ParamFunc[*T](func(w *World) (*T, error) {
		r, _ := Resource[T](w)
		return r, nil
	})
}

// ClockParam resolves the Time resource as an action.Clock.
func ClockParam() Param[action.Clock] {
	return ParamFunc[action.Clock](func(w *World) (action.Clock, error) {
		t, ok := Resource[Time](w)
		if !ok {
			return nil, &MissingResourceError{Type: typeName[Time]()}
		}
		return t, nil
	})
}

// View is a read/write window onto every component of type T.
type View[T any] struct {
	w *World
}

// Get returns the component attached to e.
func (v View[T]) Get(e Entity) (*T, bool) { return Get[T](v.w, e) }

// Each calls fn for every entity carrying T, in spawn order.
func (v View[T]) Each(fn func(Entity, *T)) { Each(v.w, fn) }

// Len returns the number of entities carrying T.
func (v View[T]) Len() int { return Count[T](v.w) }

// Components resolves a View over T. It never fails; an empty view is valid.
func Components[T any]() Param[View[T]] {
	return ParamFunc[View[T]](func(w *World) (View[T], error) {
		return View[T]{w: w}, nil
	})
}

// Single resolves the one component of type T in the world.
// It fails unless exactly one entity carries T.
func Single[T any]() Param[*T] {
	return ParamFunc[*T](func(w *World) (*T, error) {
		es := With[T](w)
		if len(es) != 1 {
			return nil, &MissingComponentError{Type: typeName[T](), Found: len(es)}
		}
		c, _ := Get[T](w, es[0])
		return c, nil
	})
}

// cmdsParam owns one buffer for the life of the erased action. Apply
// drains it, so every call starts with an empty buffer.
type cmdsParam struct {
	buf *Commands
}

// Cmds resolves a Commands buffer that is applied after perform.
func Cmds() Param[*Commands] {
	return &cmdsParam{}
}

func (p *cmdsParam) Fetch(*World) (*Commands, error) {
	if p.buf == nil {
		p.buf = NewCommands()
	}
	return p.buf, nil
}

func (p *cmdsParam) Apply(w *World) {
	if p.buf != nil {
		p.buf.Apply(w)
	}
}

// Exclusive resolves the World itself. Actions using it must not retain
// the pointer past the call.
func Exclusive() Param[*World] {
	return ParamFunc[*World](func(w *World) (*World, error) { return w, nil })
}

// None resolves the empty context.
func None() Param[action.Unit] {
	return ParamFunc[action.Unit](func(*World) (action.Unit, error) { return action.Unit{}, nil })
}

type joinParam[A, B any] struct {
	a Param[A]
	b Param[B]
}

// Join resolves both a and b into the Pair context two-child operators take.
// Deferred writes are applied in the same order.
func Join[A, B any](a Param[A], b Param[B]) Param[action.Pair[A, B]] {
	return &joinParam[A, B]{a: a, b: b}
}

func (p *joinParam[A, B]) Fetch(w *World) (action.Pair[A, B], error) {
	first, err := p.a.Fetch(w)
	if err != nil {
		return action.Pair[A, B]{}, err
	}
	second, err := p.b.Fetch(w)
	if err != nil {
		return action.Pair[A, B]{}, err
	}
	return action.Pair[A, B]{First: first, Second: second}, nil
}

func (p *joinParam[A, B]) Apply(w *World) {
	p.a.Apply(w)
	p.b.Apply(w)
}

type mapParam[A, B any] struct {
	inner Param[A]
	f     func(A) B
}

// MapParam derives a context from another param's value.
func MapParam[A, B any](p Param[A], f func(A) B) Param[B] {
	return &mapParam[A, B]{inner: p, f: f}
}

func (p *mapParam[A, B]) Fetch(w *World) (B, error) {
	a, err := p.inner.Fetch(w)
	if err != nil {
		var zero B
		return zero, err
	}
	return p.f(a), nil
}

func (p *mapParam[A, B]) Apply(w *World) { p.inner.Apply(w) }
