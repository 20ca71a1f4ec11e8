package harness

import (
	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/script"
)

// TickSnapshot is the var table after one tick.
type TickSnapshot struct {
	Tick uint64             `json:"tick"`
	Vars map[string]float64 `json:"vars"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if no tick failed and every assertion held.
	Pass bool `json:"pass"`

	// RunID is the run token stamped on every step.
	RunID string `json:"run_id"`

	// Ticks is the number of ticks run.
	Ticks uint64 `json:"ticks"`

	// Trace holds one var snapshot per tick, in tick order.
	Trace []TickSnapshot `json:"trace"`

	// Steps holds every driver step in seq order.
	Steps []ir.Step `json:"steps"`

	// Events holds every emitted event in emission order.
	Events []script.Event `json:"events"`

	// Owners maps owner names to their entity ids.
	Owners map[string]uint64 `json:"owners"`

	// Idle reports, per owner name, whether its sequencer was empty at the
	// end of the run.
	Idle map[string]bool `json:"idle"`

	// Errors contains tick failures and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TickSnapshot{},
		Steps:  []ir.Step{},
		Events: []script.Event{},
		Owners: make(map[string]uint64),
		Idle:   make(map[string]bool),
		Errors: []string{},
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// VarAt returns the value of name after tick, and whether that tick ran.
func (r *Result) VarAt(name string, tick uint64) (float64, bool) {
	for _, snap := range r.Trace {
		if snap.Tick == tick {
			return snap.Vars[name], true
		}
	}
	return 0, false
}

// FinalVars returns the var table after the last tick.
func (r *Result) FinalVars() map[string]float64 {
	if len(r.Trace) == 0 {
		return map[string]float64{}
	}
	return r.Trace[len(r.Trace)-1].Vars
}
