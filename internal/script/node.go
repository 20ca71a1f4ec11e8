package script

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Node is one element of an action tree. Exactly one field is set.
type Node struct {
	Set         *SetNode         `yaml:"set,omitempty" json:"set,omitempty"`
	Add         *AddNode         `yaml:"add,omitempty" json:"add,omitempty"`
	Emit        *EmitNode        `yaml:"emit,omitempty" json:"emit,omitempty"`
	Interpolate *InterpolateNode `yaml:"interpolate,omitempty" json:"interpolate,omitempty"`
	TweenBy     *TweenByNode     `yaml:"tween_by,omitempty" json:"tween_by,omitempty"`
	Wait        *WaitNode        `yaml:"wait,omitempty" json:"wait,omitempty"`
	Sequence    []Node           `yaml:"sequence,omitempty" json:"sequence,omitempty"`
	Parallel    []Node           `yaml:"parallel,omitempty" json:"parallel,omitempty"`
}

// SetNode writes Value to Var once.
type SetNode struct {
	Var   string  `yaml:"var" json:"var"`
	Value float64 `yaml:"value" json:"value"`
}

// AddNode adds Delta to Var once.
type AddNode struct {
	Var   string  `yaml:"var" json:"var"`
	Delta float64 `yaml:"delta" json:"delta"`
}

// EmitNode records Event once.
type EmitNode struct {
	Event string `yaml:"event" json:"event"`
}

// InterpolateNode ramps Var from From to To over Duration, writing it once
// per tick.
type InterpolateNode struct {
	Var      string   `yaml:"var" json:"var"`
	From     float64  `yaml:"from" json:"from"`
	To       float64  `yaml:"to" json:"to"`
	Duration Duration `yaml:"duration" json:"duration"`
}

// TweenByNode ramps Var by By relative to its value when the node starts.
type TweenByNode struct {
	Var      string   `yaml:"var" json:"var"`
	By       float64  `yaml:"by" json:"by"`
	Duration Duration `yaml:"duration" json:"duration"`
}

// WaitNode yields once per tick until Duration has passed.
type WaitNode struct {
	Duration Duration `yaml:"duration" json:"duration"`
}

// Kind returns the name of the set field, or "" if none or several are set.
func (n *Node) Kind() string {
	kinds := n.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (n *Node) kinds() []string {
	var kinds []string
	if n.Set != nil {
		kinds = append(kinds, "set")
	}
	if n.Add != nil {
		kinds = append(kinds, "add")
	}
	if n.Emit != nil {
		kinds = append(kinds, "emit")
	}
	if n.Interpolate != nil {
		kinds = append(kinds, "interpolate")
	}
	if n.TweenBy != nil {
		kinds = append(kinds, "tween_by")
	}
	if n.Wait != nil {
		kinds = append(kinds, "wait")
	}
	if n.Sequence != nil {
		kinds = append(kinds, "sequence")
	}
	if n.Parallel != nil {
		kinds = append(kinds, "parallel")
	}
	return kinds
}

// Validate checks n and all its children. Every problem is reported, each
// prefixed with the path of the offending node.
func (n *Node) Validate() error {
	return errors.Join(n.validate("$")...)
}

func (n *Node) validate(path string) []error {
	kinds := n.kinds()
	switch len(kinds) {
	case 0:
		return []error{fmt.Errorf("%s: empty node", path)}
	case 1:
	default:
		return []error{fmt.Errorf("%s: node has several kinds: %s", path, strings.Join(kinds, ", "))}
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s.%s: %s", path, kinds[0], fmt.Sprintf(format, args...)))
	}

	switch {
	case n.Set != nil:
		if n.Set.Var == "" {
			fail("var is required")
		}
	case n.Add != nil:
		if n.Add.Var == "" {
			fail("var is required")
		}
	case n.Emit != nil:
		if n.Emit.Event == "" {
			fail("event is required")
		}
	case n.Interpolate != nil:
		if n.Interpolate.Var == "" {
			fail("var is required")
		}
		if n.Interpolate.Duration < 0 {
			fail("duration must not be negative")
		}
	case n.TweenBy != nil:
		if n.TweenBy.Var == "" {
			fail("var is required")
		}
		if n.TweenBy.Duration < 0 {
			fail("duration must not be negative")
		}
	case n.Wait != nil:
		if n.Wait.Duration < 0 {
			fail("duration must not be negative")
		}
	case n.Sequence != nil:
		for i := range n.Sequence {
			errs = append(errs, n.Sequence[i].validate(fmt.Sprintf("%s.sequence[%d]", path, i))...)
		}
	case n.Parallel != nil:
		for i := range n.Parallel {
			errs = append(errs, n.Parallel[i].validate(fmt.Sprintf("%s.parallel[%d]", path, i))...)
		}
	}
	return errs
}
