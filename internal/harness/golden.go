package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tickseq/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Trace        []TickSnapshot
	Steps        []ir.Step
	Events       []eventRecord
}

type eventRecord struct {
	Tick uint64
	Name string
}

// NewTraceSnapshot builds the snapshot of result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	events := make([]eventRecord, len(result.Events))
	for i, ev := range result.Events {
		events[i] = eventRecord{Tick: ev.Tick, Name: ev.Name}
	}
	return TraceSnapshot{
		ScenarioName: name,
		RunID:        result.RunID,
		Trace:        result.Trace,
		Steps:        result.Steps,
		Events:       events,
	}
}

// formatValue renders a var value. Canonical JSON has no floats, so values
// are snapshotted as their shortest round-trip decimal string.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles plain types.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	ticks := make([]any, len(s.Trace))
	for i, snap := range s.Trace {
		vars := make(map[string]string, len(snap.Vars))
		for name, v := range snap.Vars {
			vars[name] = formatValue(v)
		}
		ticks[i] = map[string]any{
			"tick": snap.Tick,
			"vars": vars,
		}
	}

	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = step.Canonical()
	}

	events := make([]any, len(s.Events))
	for i, ev := range s.Events {
		events[i] = map[string]any{
			"tick": ev.Tick,
			"name": ev.Name,
		}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"ticks":         ticks,
		"steps":         steps,
		"events":        events,
	}
	if s.RunID != "" {
		result["run_id"] = s.RunID
	}
	return result
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass as well.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
