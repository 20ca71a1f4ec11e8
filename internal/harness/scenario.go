package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/script"
)

// DefaultStep is the simulated time per tick when a scenario sets none.
const DefaultStep = time.Second

// DefaultMaxTicks bounds scenarios that run until idle.
const DefaultMaxTicks = 10000

// Scenario defines a deterministic run of one or more owners.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Step is the simulated time per tick. Default: DefaultStep.
	Step script.Duration `yaml:"step,omitempty" json:"step,omitempty"`

	// Ticks is the exact number of ticks to run. Zero runs until every
	// owner is idle, at most MaxTicks ticks.
	Ticks uint64 `yaml:"ticks,omitempty" json:"ticks,omitempty"`

	// MaxTicks bounds a run-until-idle scenario. Default: DefaultMaxTicks.
	MaxTicks uint64 `yaml:"max_ticks,omitempty" json:"max_ticks,omitempty"`

	// Vars are set before the first tick.
	Vars map[string]float64 `yaml:"vars,omitempty" json:"vars,omitempty"`

	// Owners each get their own sequencer, spawned in listed order.
	Owners []OwnerSpec `yaml:"owners" json:"owners"`

	// Assertions validate the result.
	Assertions []Assertion `yaml:"assertions" json:"assertions"`

	// RunToken is an optional fixed run token.
	// If empty, defaults to "test-run-default" for deterministic golden file comparison.
	RunToken string `yaml:"run_token,omitempty" json:"run_token,omitempty"`
}

// OwnerSpec is one owner and the actions pushed onto its sequencer.
type OwnerSpec struct {
	// Name identifies the owner in assertions.
	Name string `yaml:"name" json:"name"`

	// AtTick delays the push until just before that tick runs.
	// Zero and one both push before the first tick.
	AtTick uint64 `yaml:"at_tick,omitempty" json:"at_tick,omitempty"`

	// Actions are pushed in order.
	Actions []script.Node `yaml:"actions" json:"actions"`
}

// Assertion validates the result of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "var_equals": Var has Value after the last tick
	// - "var_at": Var has Value after Tick
	// - "event_order": Events appear in this relative order
	// - "step_count": Owner has Count steps (with Outcome, if set)
	// - "idle": Owner's sequencer is empty at the end
	Type string `yaml:"type" json:"type"`

	// Var names a script var (var_equals, var_at).
	Var string `yaml:"var,omitempty" json:"var,omitempty"`

	// Tick is the tick to inspect (var_at).
	Tick uint64 `yaml:"tick,omitempty" json:"tick,omitempty"`

	// Value is the expected var value (var_equals, var_at).
	Value *float64 `yaml:"value,omitempty" json:"value,omitempty"`

	// Events is the expected event order (event_order).
	Events []string `yaml:"events,omitempty" json:"events,omitempty"`

	// Owner names an owner (step_count, idle).
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty"`

	// Outcome filters steps (step_count). Empty counts every step.
	Outcome string `yaml:"outcome,omitempty" json:"outcome,omitempty"`

	// Count is the expected number of steps (step_count).
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertVarEquals  = "var_equals"
	AssertVarAt      = "var_at"
	AssertEventOrder = "event_order"
	AssertStepCount  = "step_count"
	AssertIdle       = "idle"
)

// StepDuration returns the configured step, or DefaultStep.
func (s *Scenario) StepDuration() time.Duration {
	if s.Step <= 0 {
		return DefaultStep
	}
	return s.Step.Std()
}

// TickLimit returns the maximum number of ticks the scenario may run.
func (s *Scenario) TickLimit() uint64 {
	switch {
	case s.Ticks > 0:
		return s.Ticks
	case s.MaxTicks > 0:
		return s.MaxTicks
	default:
		return DefaultMaxTicks
	}
}

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// evaluated as CUE; everything else is YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(data, path)
	}
	return ParseYAML(data)
}

// ParseYAML parses and validates a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ParseCUE evaluates a CUE scenario and decodes its concrete value.
// filename is used in error positions only.
func ParseCUE(data []byte, filename string) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE value is not concrete: %w", err)
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export CUE: %w", err)
	}

	var scenario Scenario
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE value: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and cross references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Step < 0 {
		return fmt.Errorf("step must not be negative")
	}
	if len(s.Owners) == 0 {
		return fmt.Errorf("owners list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	owners := make(map[string]bool, len(s.Owners))
	for i, o := range s.Owners {
		if o.Name == "" {
			return fmt.Errorf("owners[%d]: name is required", i)
		}
		if owners[o.Name] {
			return fmt.Errorf("owners[%d]: duplicate owner %q", i, o.Name)
		}
		owners[o.Name] = true

		if len(o.Actions) == 0 {
			return fmt.Errorf("owners[%d]: actions list is required", i)
		}
		for j := range o.Actions {
			if err := o.Actions[j].Validate(); err != nil {
				return fmt.Errorf("owners[%d].actions[%d]: %w", i, j, err)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], owners); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, owners map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertVarEquals:
		if a.Var == "" {
			return fmt.Errorf("assertions[%d]: var is required for var_equals", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for var_equals", index)
		}
	case AssertVarAt:
		if a.Var == "" {
			return fmt.Errorf("assertions[%d]: var is required for var_at", index)
		}
		if a.Tick == 0 {
			return fmt.Errorf("assertions[%d]: tick is required for var_at", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for var_at", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertStepCount:
		if !owners[a.Owner] {
			return fmt.Errorf("assertions[%d]: unknown owner %q for step_count", index, a.Owner)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for step_count", index)
		}
		if a.Outcome != "" && !ir.Outcome(a.Outcome).Valid() {
			return fmt.Errorf("assertions[%d]: unknown outcome %q for step_count", index, a.Outcome)
		}
	case AssertIdle:
		if !owners[a.Owner] {
			return fmt.Errorf("assertions[%d]: unknown owner %q for idle", index, a.Owner)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
