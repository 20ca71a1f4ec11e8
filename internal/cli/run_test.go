package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tickseq/internal/config"
	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/ir"
	"github.com/roach88/tickseq/internal/store"
)

// runWithTokens executes the run command with fixed run tokens.
func runWithTokens(t *testing.T, format string, tokens []string, args ...string) (string, error) {
	t.Helper()
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: format},
		RunTokens:   engine.NewFixedGenerator(tokens...),
	}
	return execute(newRunCommand(opts), args...)
}

func TestRun_Text(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ramp.yaml", rampScenario)

	out, err := runWithTokens(t, "text", []string{"run-1"}, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, `Scenario "ramp" passed after 5 tick(s), 5 step(s)`)
	assert.Contains(t, out, "x = 100")
}

func TestRun_JSON(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ramp.yaml", rampScenario)

	out, err := runWithTokens(t, "json", []string{"run-json"}, path)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		RunID  string     `json:"run_id"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-json", resp.RunID)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, uint64(5), resp.Data.Ticks)
	assert.Equal(t, 5, resp.Data.Steps)
	assert.Equal(t, 100.0, resp.Data.Vars["x"])
}

func TestRun_FailingAssertion(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "wrong.yaml", failingScenario)

	out, err := runWithTokens(t, "text", []string{"run-1"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `Scenario "wrong" failed`)
	assert.Contains(t, out, "✗")
}

func TestRun_MissingScenario(t *testing.T) {
	_, err := runWithTokens(t, "text", nil, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRun_InvalidScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "broken.yaml", brokenScenario+"assertions:\n  - type: idle\n    owner: nobody\n")

	_, err := runWithTokens(t, "text", nil, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "empty node")
}

func TestRun_TicksOverride(t *testing.T) {
	scenario := `name: partial
owners:
  - name: mover
    actions:
      - interpolate: {var: x, from: 0, to: 100, duration: 4s}
assertions:
  - type: var_equals
    var: x
    value: 50
`
	path := writeScenario(t, t.TempDir(), "partial.yaml", scenario)

	out, err := runWithTokens(t, "text", []string{"run-1"}, "--ticks", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "after 2 tick(s)")
	assert.Contains(t, out, "x = 50")
}

func TestRun_Journal(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "ramp.yaml", rampScenario)
	dbPath := filepath.Join(dir, "journal.db")

	_, err := runWithTokens(t, "text", []string{"run-db"}, "--db", dbPath, path)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-db")
	require.NoError(t, err)
	assert.Equal(t, "ramp", run.Scenario)
	assert.Equal(t, ir.RunCompleted, run.Status)
	assert.Equal(t, uint64(5), run.Ticks)

	steps, err := st.ReadSteps(context.Background(), "run-db")
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, ir.OutcomeCompleted, steps[4].Outcome)
}

func TestRun_MetricsServerStopsWithRun(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ramp.yaml", rampScenario)

	done := make(chan error, 1)
	go func() {
		_, err := runWithTokens(t, "text", []string{"run-1"}, "--metrics-addr", "127.0.0.1:0", path)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after the scenario finished")
	}
}

func TestRun_Realtime(t *testing.T) {
	scenario := `name: quick
owners:
  - name: mover
    actions:
      - interpolate: {var: x, from: 0, to: 1, duration: 20ms}
assertions:
  - type: idle
    owner: mover
`
	path := writeScenario(t, t.TempDir(), "quick.yaml", scenario)

	out, err := runWithTokens(t, "text", []string{"run-rt"}, "--realtime", "--tick-interval", "1ms", path)
	require.NoError(t, err)
	assert.Contains(t, out, `Scenario "quick" passed`)
	assert.Contains(t, out, "x = 1")
}

func TestRun_NegativeRetryLimit(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ramp.yaml", rampScenario)

	_, err := runWithTokens(t, "text", nil, "--retry-limit", "-1", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestApplyRunDefaults(t *testing.T) {
	opts := &RunOptions{RootOptions: &RootOptions{
		Format: "text",
		Config: config.Config{
			DB:                  "env.db",
			TickInterval:        40 * time.Millisecond,
			MetricsAddr:         ":9100",
			RetryLimit:          8,
			StarvationThreshold: time.Second,
		},
	}}
	cmd := newRunCommand(opts)
	require.NoError(t, cmd.Flags().Parse([]string{"--db", "flag.db", "--retry-limit", "3"}))

	applyRunDefaults(opts, cmd)

	assert.Equal(t, "flag.db", opts.Database)
	assert.Equal(t, 3, opts.RetryLimit)
	assert.Equal(t, 40*time.Millisecond, opts.TickInterval)
	assert.Equal(t, ":9100", opts.MetricsAddr)
	assert.Equal(t, time.Second, opts.StarvationThreshold)
}

func TestRunHelpText(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	assert.Contains(t, cmd.Long, "--realtime")
	assert.Contains(t, cmd.Long, "TICKSEQ_DB")
	for _, name := range []string{"db", "ticks", "realtime", "tick-interval", "metrics-addr", "retry-limit", "starvation-threshold"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
