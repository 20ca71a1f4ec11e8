// Package engine is the host tick loop that drives registered systems.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// The engine owns the World and runs every system sequentially, in
// registration order, once per tick. No two systems ever touch the World
// at the same time, so systems need no locking. This ensures:
// - Deterministic order of effects within a tick
// - Reproducible journals when driven by a fixed-step time source
// - Simple reasoning about which system observed which state
//
// Tick Flow:
// 1. Clock advances: tick number increments, TimeSource maps it to elapsed time
// 2. The world.Time resource is updated (Tick, Elapsed, Delta)
// 3. Systems run in order; failures are wrapped in RuntimeError
// 4. Tick observers (metrics) see the duration and combined error
//
// The sequencer driver is registered as one such system through its Plugin.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Step records are stamped with a monotonic seq counter from Clock.Next().
// Wall-clock time only matters to the real-time Run loop and the starvation
// watchdog; it never orders records.
//
// Log and Continue:
// A failing system does not stop the Run loop. The error is logged and the
// next tick proceeds, matching the behaviour a replay would observe.
package engine
