package script

import (
	"maps"
	"slices"

	"github.com/roach88/tickseq/internal/world"
)

// Vars is the resource scripts read and write.
type Vars struct {
	values map[string]float64
}

// NewVars returns an empty variable table.
func NewVars() *Vars {
	return &Vars{values: make(map[string]float64)}
}

// Get returns the value of name, or zero if it was never set.
func (v *Vars) Get(name string) float64 {
	return v.values[name]
}

// Lookup returns the value of name and whether it was set.
func (v *Vars) Lookup(name string) (float64, bool) {
	x, ok := v.values[name]
	return x, ok
}

// Set writes name.
func (v *Vars) Set(name string, x float64) {
	v.values[name] = x
}

// Add adds delta to name, treating an unset var as zero.
func (v *Vars) Add(name string, delta float64) {
	v.values[name] += delta
}

// Names returns the set var names in sorted order.
func (v *Vars) Names() []string {
	return slices.Sorted(maps.Keys(v.values))
}

// Snapshot returns a copy of every var.
func (v *Vars) Snapshot() map[string]float64 {
	return maps.Clone(v.values)
}

// Event is one emitted event.
type Event struct {
	Tick uint64
	Name string
}

// Events is the append-only resource emit nodes write to.
type Events struct {
	log []Event
}

// Append records an event.
func (e *Events) Append(ev Event) {
	e.log = append(e.log, ev)
}

// All returns the events in emission order.
func (e *Events) All() []Event {
	return slices.Clone(e.log)
}

// Names returns the event names in emission order.
func (e *Events) Names() []string {
	names := make([]string, len(e.log))
	for i, ev := range e.log {
		names[i] = ev.Name
	}
	return names
}

// Len returns the number of events.
func (e *Events) Len() int {
	return len(e.log)
}

// Install adds empty Vars and Events resources to w unless they exist, and
// returns them.
func Install(w *world.World) (*Vars, *Events) {
	vars, ok := world.Resource[Vars](w)
	if !ok {
		vars = NewVars()
		world.SetResource(w, vars)
	}
	events, ok := world.Resource[Events](w)
	if !ok {
		events = &Events{}
		world.SetResource(w, events)
	}
	return vars, events
}
