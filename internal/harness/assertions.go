package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/tickseq/internal/ir"
)

// valueTolerance absorbs float rounding in interpolated values.
const valueTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Steps    []ir.Step
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, s := range e.Steps {
			fmt.Fprintf(&buf, "  [%d] tick %d owner %d %s %s\n", s.Seq, s.Tick, s.Owner, s.Action, s.Outcome)
		}
	}

	return buf.String()
}

func valuesEqual(a, b float64) bool {
	return math.Abs(a-b) <= valueTolerance
}

// assertVarEquals checks the final value of a var.
func assertVarEquals(result *Result, a Assertion) error {
	if a.Value == nil {
		return fmt.Errorf("var_equals: value is required")
	}
	got, ok := result.FinalVars()[a.Var]
	if !ok {
		return &AssertionError{
			Type:     AssertVarEquals,
			Expected: fmt.Sprintf("%s = %g", a.Var, *a.Value),
			Actual:   fmt.Sprintf("%s was never set", a.Var),
		}
	}
	if !valuesEqual(got, *a.Value) {
		return &AssertionError{
			Type:     AssertVarEquals,
			Expected: fmt.Sprintf("%s = %g", a.Var, *a.Value),
			Actual:   fmt.Sprintf("%s = %g", a.Var, got),
		}
	}
	return nil
}

// assertVarAt checks the value of a var after a given tick.
func assertVarAt(result *Result, a Assertion) error {
	if a.Value == nil {
		return fmt.Errorf("var_at: value is required")
	}
	got, ok := result.VarAt(a.Var, a.Tick)
	if !ok {
		return &AssertionError{
			Type:     AssertVarAt,
			Expected: fmt.Sprintf("%s = %g after tick %d", a.Var, *a.Value, a.Tick),
			Actual:   fmt.Sprintf("tick %d never ran (ran %d ticks)", a.Tick, result.Ticks),
		}
	}
	if !valuesEqual(got, *a.Value) {
		return &AssertionError{
			Type:     AssertVarAt,
			Expected: fmt.Sprintf("%s = %g after tick %d", a.Var, *a.Value, a.Tick),
			Actual:   fmt.Sprintf("%s = %g", a.Var, got),
		}
	}
	return nil
}

// assertEventOrder checks that the events appear in the given relative
// order. Other events may be interleaved.
func assertEventOrder(result *Result, a Assertion) error {
	names := make([]string, len(result.Events))
	for i, ev := range result.Events {
		names[i] = ev.Name
	}

	next := 0
	for _, name := range names {
		if next < len(a.Events) && name == a.Events[next] {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("events in order: %v", a.Events),
		Actual:   fmt.Sprintf("%v (missing %q in order)", names, a.Events[next]),
	}
}

// assertStepCount checks how many driver steps an owner took.
func assertStepCount(result *Result, a Assertion) error {
	id, ok := result.Owners[a.Owner]
	if !ok {
		return fmt.Errorf("step_count: unknown owner %q", a.Owner)
	}
	if a.Count == nil {
		return fmt.Errorf("step_count: count is required")
	}

	var steps []ir.Step
	for _, s := range result.Steps {
		if s.Owner == id && (a.Outcome == "" || s.Outcome == ir.Outcome(a.Outcome)) {
			steps = append(steps, s)
		}
	}
	if len(steps) == *a.Count {
		return nil
	}

	what := "steps"
	if a.Outcome != "" {
		what = a.Outcome + " steps"
	}
	return &AssertionError{
		Type:     AssertStepCount,
		Expected: fmt.Sprintf("%d %s for %s", *a.Count, what, a.Owner),
		Actual:   fmt.Sprintf("%d %s", len(steps), what),
		Steps:    steps,
	}
}

// assertIdle checks that an owner's sequencer is empty at the end.
func assertIdle(result *Result, a Assertion) error {
	idle, ok := result.Idle[a.Owner]
	if !ok {
		return fmt.Errorf("idle: unknown owner %q", a.Owner)
	}
	if idle {
		return nil
	}
	return &AssertionError{
		Type:     AssertIdle,
		Expected: fmt.Sprintf("%s idle", a.Owner),
		Actual:   fmt.Sprintf("%s still has queued actions after %d ticks", a.Owner, result.Ticks),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertVarEquals:
			err = assertVarEquals(result, assertion)
		case AssertVarAt:
			err = assertVarAt(result, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result, assertion)
		case AssertStepCount:
			err = assertStepCount(result, assertion)
		case AssertIdle:
			err = assertIdle(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
