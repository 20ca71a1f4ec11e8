package sequencer

import "github.com/roach88/tickseq/internal/ir"

// Observer receives one record per front-handle invocation.
// Observers run synchronously inside the tick and must not block.
type Observer interface {
	ObserveStep(step ir.Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ir.Step)

// ObserveStep calls f.
func (f ObserverFunc) ObserveStep(step ir.Step) { f(step) }

// Recorder keeps every observed step in memory.
type Recorder struct {
	Steps []ir.Step
}

// ObserveStep appends step.
func (r *Recorder) ObserveStep(step ir.Step) {
	r.Steps = append(r.Steps, step)
}

// Count returns the number of recorded steps for owner with the given
// outcome. An empty outcome matches every step.
func (r *Recorder) Count(owner uint64, outcome ir.Outcome) int {
	n := 0
	for _, s := range r.Steps {
		if s.Owner == owner && (outcome == "" || s.Outcome == outcome) {
			n++
		}
	}
	return n
}
