// Package script compiles declarative action trees into erased actions.
//
// A tree is built from nodes, each a map with exactly one key:
//
//	set:         {var: x, value: 1}            one-shot write
//	add:         {var: x, delta: 1}            one-shot increment
//	emit:        {event: name}                 one-shot event record
//	interpolate: {var: x, from: 0, to: 1, duration: 2s}
//	tween_by:    {var: x, by: 10, duration: 1s}
//	wait:        {duration: 1s}
//	sequence:    [node, ...]                   children one after another
//	parallel:    [node, ...]                   children round-robin
//
// Trees read and write the Vars resource and append to the Events
// resource. Both must be present in the World before the first tick that
// runs a compiled tree; Install sets them up.
package script
