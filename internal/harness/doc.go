// Package harness runs declarative tickseq scenarios and checks their
// results.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE) files:
//
//	name: ramp
//	description: "x ramps to 100 over four ticks"
//	step: 1s          # simulated time per tick, default 1s
//	ticks: 0          # 0 runs until every owner is idle
//	vars: {x: 0}
//	owners:
//	  - name: mover
//	    actions:
//	      - interpolate: {var: x, from: 0, to: 100, duration: 4s}
//	  - name: late
//	    at_tick: 3    # pushed just before tick 3 runs
//	    actions:
//	      - emit: {event: hello}
//	assertions:
//	  - type: var_at
//	    var: x
//	    tick: 2
//	    value: 50
//	  - type: idle
//	    owner: mover
//
// Actions use the node language of package script.
//
// # Assertion Types
//
//   - var_equals: final value of a var
//   - var_at: value of a var after the given tick
//   - event_order: events appear in this relative order
//   - step_count: number of driver steps of an owner, optionally by outcome
//   - idle: the owner's sequencer is empty at the end
//
// # Deterministic Testing
//
// Scenarios run on a fixed-step time source with a fixed run token taken
// from run_token (or "test-run-default"), so two runs of the same scenario
// produce identical traces. RunWithGolden snapshots the trace as canonical
// JSON through goldie.
package harness
