package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const rampScenario = `name: ramp
step: 1s
owners:
  - name: mover
    actions:
      - interpolate: {var: x, from: 0, to: 100, duration: 4s}
assertions:
  - type: var_at
    var: x
    tick: 4
    value: 100
  - type: idle
    owner: mover
`

const failingScenario = `name: wrong
owners:
  - name: setter
    actions:
      - set: {var: y, value: 1}
assertions:
  - type: var_equals
    var: y
    value: 7
`

const brokenScenario = `name: broken
owners:
  - name: nobody
    actions:
      - {}
`

// writeScenario writes content to dir/name and returns the path.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
