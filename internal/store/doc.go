// Package store provides SQLite-backed durable storage for run journals.
//
// The store implements an append-only log with:
//   - Runs: one row per scenario or engine run, keyed by run token
//   - Steps: one row per invocation of an owner's front handle
//
// # Critical Patterns
//
// Step Idempotency
//   - PRIMARY KEY(run_id, seq) with ON CONFLICT DO NOTHING
//   - Re-journaling the same step is a no-op
//
// Logical Identity and Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Enables byte-identical journals for deterministic runs
//
// Deterministic Query Results
//   - Step queries include ORDER BY seq ASC
//   - Run listings include ORDER BY id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
