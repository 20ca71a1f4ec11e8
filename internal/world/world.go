package world

import (
	"reflect"
)

// Entity identifies an owner in the world. The zero Entity is never issued.
type Entity uint64

// World stores entities, components and resources.
type World struct {
	next       Entity
	order      []Entity
	alive      map[Entity]struct{}
	components map[reflect.Type]map[Entity]any
	resources  map[reflect.Type]any
}

// New creates an empty world.
func New() *World {
	return &World{
		alive:      make(map[Entity]struct{}),
		components: make(map[reflect.Type]map[Entity]any),
		resources:  make(map[reflect.Type]any),
	}
}

// Spawn creates a new entity.
func (w *World) Spawn() Entity {
	w.next++
	e := w.next
	w.alive[e] = struct{}{}
	w.order = append(w.order, e)
	return e
}

// Despawn removes e and every component attached to it.
// Returns false if e was not alive.
func (w *World) Despawn(e Entity) bool {
	if _, ok := w.alive[e]; !ok {
		return false
	}
	delete(w.alive, e)
	for _, store := range w.components {
		delete(store, e)
	}
	for i, o := range w.order {
		if o == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Alive reports whether e exists.
func (w *World) Alive(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Entities returns all live entities in spawn order.
func (w *World) Entities() []Entity {
	out := make([]Entity, len(w.order))
	copy(out, w.order)
	return out
}

// Insert attaches c to e, replacing any existing component of the same type.
// Returns false if e is not alive.
func Insert[T any](w *World, e Entity, c *T) bool {
	if !w.Alive(e) {
		return false
	}
	key := reflect.TypeFor[T]()
	store, ok := w.components[key]
	if !ok {
		store = make(map[Entity]any)
		w.components[key] = store
	}
	store[e] = c
	return true
}

// Get returns the component of type T attached to e.
func Get[T any](w *World, e Entity) (*T, bool) {
	v, ok := w.components[reflect.TypeFor[T]()][e]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Remove detaches the component of type T from e.
func Remove[T any](w *World, e Entity) bool {
	store := w.components[reflect.TypeFor[T]()]
	if _, ok := store[e]; !ok {
		return false
	}
	delete(store, e)
	return true
}

// With returns the entities carrying a component of type T, in spawn order.
func With[T any](w *World) []Entity {
	store := w.components[reflect.TypeFor[T]()]
	if len(store) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(store))
	for _, e := range w.order {
		if _, ok := store[e]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Each calls fn for every entity carrying T, in spawn order.
func Each[T any](w *World, fn func(Entity, *T)) {
	store := w.components[reflect.TypeFor[T]()]
	for _, e := range w.order {
		if v, ok := store[e]; ok {
			fn(e, v.(*T))
		}
	}
}

// Count returns how many entities carry T.
func Count[T any](w *World) int {
	return len(w.components[reflect.TypeFor[T]()])
}

// SetResource installs r as the singleton of type T.
func SetResource[T any](w *World, r *T) {
	w.resources[reflect.TypeFor[T]()] = r
}

// Resource returns the singleton of type T.
func Resource[T any](w *World) (*T, bool) {
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// RemoveResource deletes the singleton of type T.
func RemoveResource[T any](w *World) bool {
	key := reflect.TypeFor[T]()
	if _, ok := w.resources[key]; !ok {
		return false
	}
	delete(w.resources, key)
	return true
}

// typeName is used in error messages.
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
