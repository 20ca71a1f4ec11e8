package ir

// Outcome is what a single driver step did with the front handle.
type Outcome string

const (
	// OutcomeYielded means the action produced a visible output this tick.
	OutcomeYielded Outcome = "yielded"

	// OutcomeCompleted means the action reported Done and its handle was popped.
	OutcomeCompleted Outcome = "completed"

	// OutcomeFailed means context resolution failed; the handle stays queued.
	OutcomeFailed Outcome = "failed"

	// OutcomeExhausted means the retry budget ran out within one tick.
	OutcomeExhausted Outcome = "exhausted_retries"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeYielded, OutcomeCompleted, OutcomeFailed, OutcomeExhausted:
		return true
	}
	return false
}

// Step records one invocation of an owner's front handle.
//
// Seq is strictly increasing within a run. Retries counts the Pending
// results observed before the step resolved.
type Step struct {
	RunID   string  `json:"run_id"`
	Seq     int64   `json:"seq"`
	Tick    uint64  `json:"tick"`
	Owner   uint64  `json:"owner"`
	Handle  int64   `json:"handle"`
	Action  string  `json:"action"`
	Outcome Outcome `json:"outcome"`
	Retries int     `json:"retries"`
	Error   string  `json:"error,omitempty"`
}

// Canonical returns the step as a map suitable for MarshalCanonical.
func (s Step) Canonical() map[string]any {
	m := map[string]any{
		"run_id":  s.RunID,
		"seq":     s.Seq,
		"tick":    s.Tick,
		"owner":   s.Owner,
		"handle":  s.Handle,
		"action":  s.Action,
		"outcome": string(s.Outcome),
		"retries": s.Retries,
	}
	if s.Error != "" {
		m["error"] = s.Error
	}
	return m
}

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run describes one execution of a scenario or of the engine loop.
type Run struct {
	ID       string    `json:"id"`
	Scenario string    `json:"scenario"`
	Ticks    uint64    `json:"ticks"`
	Status   RunStatus `json:"status"`
}
