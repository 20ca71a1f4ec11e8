package harness

import (
	"time"

	"github.com/roach88/tickseq/internal/script"
)

func f64(v float64) *float64 { return &v }

func count(n int) *int { return &n }

func rampNode(name string, from, to float64, d time.Duration) script.Node {
	return script.Node{Interpolate: &script.InterpolateNode{
		Var: name, From: from, To: to, Duration: script.Duration(d),
	}}
}

func setNode(name string, v float64) script.Node {
	return script.Node{Set: &script.SetNode{Var: name, Value: v}}
}

func emitNode(event string) script.Node {
	return script.Node{Emit: &script.EmitNode{Event: event}}
}

// rampScenario ramps x from 0 to 100 over four one-second ticks.
func rampScenario() *Scenario {
	return &Scenario{
		Name: "ramp",
		Owners: []OwnerSpec{{
			Name:    "mover",
			Actions: []script.Node{rampNode("x", 0, 100, 4*time.Second)},
		}},
		Assertions: []Assertion{
			{Type: AssertVarEquals, Var: "x", Value: f64(100)},
			{Type: AssertIdle, Owner: "mover"},
		},
	}
}
