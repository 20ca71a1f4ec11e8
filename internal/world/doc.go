// Package world is the shared mutable store actions run against.
//
// A World holds entities, their components (at most one value per type per
// entity) and singleton resources. Actions never see the World directly;
// they declare a Param that the bridge resolves against it on every call.
// Params may defer writes into Commands, which are applied back into the
// World once the action's perform returns.
//
// A World is not safe for concurrent use. The engine owns it and drives all
// systems sequentially within a tick.
package world
