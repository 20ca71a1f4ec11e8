// Package action implements composable, poll-driven units of deferred work.
//
// An Action is polled once per call with an input and an already-resolved
// context, and answers with a three-state Poll:
//
//   - Ready(v): one visible unit of output. A top-level caller yields to the
//     next tick before polling again; a composed parent may forward v to a
//     continuation immediately.
//   - Done: the action (or the subtree rooted at it) is exhausted and must not
//     be polled again.
//   - Pending: internal progress happened but nothing is visible yet. The
//     caller must poll again immediately, within the same tick.
//
// Pending never spans a tick boundary. It exists so that a wrapper which just
// switched phases can hand control back to its caller without fabricating a
// visible output.
//
// Leaves: FromFunc and Call (one-shot callbacks), Interpolate and
// InterpolateWith (time-driven ramps), FromSlice (round-robin fan-out).
//
// Operators: Map, Then, AndThen, Sequence, ForEach. Each operator owns its
// children and keeps an explicit phase or continuation slot. Two-child
// operators take a Pair context so each child keeps its own dependency set.
//
// Actions never resolve their own context. Resolution against the shared
// store happens in package bridge, which is the only place that touches the
// store on an action's behalf.
package action
