// Package ir holds the record types shared by the sequencer, the journal
// and the harness, plus RFC 8785 canonical JSON for golden snapshots.
//
// ir imports nothing internal.
//
// Key constraints:
//   - Logical clocks only (tick and seq), never wall-clock timestamps
//   - All JSON tags use snake_case
//   - No floats in canonical output; callers format them as strings
package ir
