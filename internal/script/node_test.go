package script

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1.5s")))
	assert.Equal(t, 1500*time.Millisecond, d.Std())

	err := d.UnmarshalText([]byte("soon"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid duration "soon"`)
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration(90 * time.Second).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}

func TestNode_DecodeYAML(t *testing.T) {
	src := `
sequence:
  - interpolate: {var: x, from: 0, to: 1, duration: 250ms}
  - tween_by: {var: x, by: 2, duration: 1s}
  - parallel:
      - wait: {duration: 2s}
      - emit: {event: done}
`
	var n Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))

	require.Equal(t, "sequence", n.Kind())
	require.Len(t, n.Sequence, 3)
	assert.Equal(t, InterpolateNode{Var: "x", From: 0, To: 1, Duration: Duration(250 * time.Millisecond)}, *n.Sequence[0].Interpolate)
	assert.Equal(t, "tween_by", n.Sequence[1].Kind())
	assert.Equal(t, time.Second, n.Sequence[1].TweenBy.Duration.Std())
	require.Len(t, n.Sequence[2].Parallel, 2)
	assert.Equal(t, "done", n.Sequence[2].Parallel[1].Emit.Event)
	assert.NoError(t, n.Validate())
}

func TestNode_DecodeJSON(t *testing.T) {
	src := `{"sequence":[{"set":{"var":"x","value":3}},{"wait":{"duration":"1s"}}]}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(src), &n))

	require.Len(t, n.Sequence, 2)
	assert.Equal(t, 3.0, n.Sequence[0].Set.Value)
	assert.Equal(t, time.Second, n.Sequence[1].Wait.Duration.Std())
}

func TestNode_DecodeYAMLRejectsBadDuration(t *testing.T) {
	var n Node
	err := yaml.Unmarshal([]byte(`wait: {duration: later}`), &n)
	require.Error(t, err)
}

func TestNode_Validate(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"empty", Node{}, "$: empty node"},
		{
			"several kinds",
			Node{Set: &SetNode{Var: "x"}, Emit: &EmitNode{Event: "e"}},
			"$: node has several kinds: set, emit",
		},
		{"set without var", Node{Set: &SetNode{}}, "$.set: var is required"},
		{"add without var", Node{Add: &AddNode{}}, "$.add: var is required"},
		{"emit without event", Node{Emit: &EmitNode{}}, "$.emit: event is required"},
		{
			"negative duration",
			Node{Interpolate: &InterpolateNode{Var: "x", Duration: -1}},
			"$.interpolate: duration must not be negative",
		},
		{
			"nested",
			Node{Sequence: []Node{{Set: &SetNode{Var: "x"}}, {Parallel: []Node{{}}}}},
			"$.sequence[1].parallel[0]: empty node",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNode_ValidateReportsEveryChild(t *testing.T) {
	n := Node{Parallel: []Node{{}, {Set: &SetNode{}}}}

	err := n.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.parallel[0]: empty node")
	assert.Contains(t, err.Error(), "$.parallel[1].set: var is required")
}

func TestNode_Kind(t *testing.T) {
	assert.Equal(t, "", (&Node{}).Kind())
	assert.Equal(t, "wait", (&Node{Wait: &WaitNode{}}).Kind())
	assert.Equal(t, "", (&Node{Wait: &WaitNode{}, Set: &SetNode{}}).Kind())
}
