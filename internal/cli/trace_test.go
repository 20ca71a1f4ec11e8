package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tickseq/internal/engine"
	"github.com/roach88/tickseq/internal/harness"
	"github.com/roach88/tickseq/internal/ir"
)

// journalRamp runs the ramp scenario into a fresh journal and returns its
// path.
func journalRamp(t *testing.T, runID string) string {
	t.Helper()
	dir := t.TempDir()
	path := writeScenario(t, dir, "ramp.yaml", rampScenario)
	dbPath := filepath.Join(dir, "journal.db")
	_, err := runWithTokens(t, "text", []string{runID}, "--db", dbPath, path)
	require.NoError(t, err)
	return dbPath
}

func runTraceCommand(format string, args ...string) (string, error) {
	return execute(NewTraceCommand(&RootOptions{Format: format}), args...)
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := runTraceCommand("text", "--run", "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "db")
}

func TestTraceDatabaseFromConfig(t *testing.T) {
	dbPath := journalRamp(t, "run-env")

	opts := &RootOptions{Format: "text"}
	opts.Config.DB = dbPath
	out, err := execute(NewTraceCommand(opts), "--run", "run-env")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for Run: run-env")
}

func TestTraceListRuns(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "ramp")
}

func TestTraceListRunsEmpty(t *testing.T) {
	out, err := runTraceCommand("text", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs journaled.")
}

func TestTraceWithRun(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("text", "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for Run: run-1")
	assert.Contains(t, out, "Status: completed after 5 tick(s)")
	assert.Contains(t, out, "[1] tick 1 owner 1 YIELD interpolate x")
	assert.Contains(t, out, "[5] tick 5 owner 1 DONE  interpolate x")
	assert.Contains(t, out, "Yielded:   4")
	assert.Contains(t, out, "Completed: 1")
	assert.NotContains(t, out, "handle")
	assert.NotContains(t, out, "Digest")
}

func TestTraceVerbose(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	opts := &RootOptions{Format: "text", Verbose: true}
	out, err := execute(NewTraceCommand(opts), "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "handle 1, ")
	assert.Contains(t, out, "Digest:")
}

func TestTraceWithRunJSON(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("json", "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		RunID  string      `json:"run_id"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, ir.RunCompleted, resp.Data.Run.Status)
	require.Len(t, resp.Data.Timeline, 5)
	assert.Equal(t, ir.OutcomeCompleted, resp.Data.Timeline[4].Outcome)
	assert.Equal(t, 5, resp.Data.Stats.Steps)
	assert.Equal(t, 1, resp.Data.Stats.Owners)
}

func TestTraceOwnerFilter(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("text", "--db", dbPath, "--run", "run-1", "--owner", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "(no steps)")
	assert.Contains(t, out, "Steps:     0")
}

func TestTraceOutcomeAndTickFilters(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("text", "--db", dbPath, "--run", "run-1",
		"--outcome", "yielded", "--from-tick", "2", "--to-tick", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "[2] tick 2")
	assert.Contains(t, out, "[3] tick 3")
	assert.NotContains(t, out, "[1] tick 1")
	assert.NotContains(t, out, "[4] tick 4")
	assert.Contains(t, out, "Steps:     2")
}

func TestTraceUnknownOutcome(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	_, err := runTraceCommand("text", "--db", dbPath, "--run", "run-1", "--outcome", "paused")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown outcome")
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	_, err := runTraceCommand("text", "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown run")
}

func TestTraceDigestMatchesInMemoryRun(t *testing.T) {
	dbPath := journalRamp(t, "run-1")

	out, err := runTraceCommand("json", "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Digest, 64)

	scenario, err := harness.ParseYAML([]byte(rampScenario))
	require.NoError(t, err)
	result, err := harness.RunContext(context.Background(), scenario,
		harness.WithRunTokens(engine.NewFixedGenerator("run-1")))
	require.NoError(t, err)

	want, err := ir.StepsDigest(result.Steps)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Data.Digest)
}

func TestTraceStats(t *testing.T) {
	steps := []ir.Step{
		{Owner: 1, Outcome: ir.OutcomeYielded, Retries: 2},
		{Owner: 1, Outcome: ir.OutcomeCompleted},
		{Owner: 2, Outcome: ir.OutcomeFailed},
		{Owner: 2, Outcome: ir.OutcomeExhausted, Retries: 9},
	}

	stats := traceStats(steps)
	assert.Equal(t, TraceStats{
		Steps:     4,
		Yielded:   1,
		Completed: 1,
		Failed:    1,
		Exhausted: 1,
		Retries:   11,
		Owners:    2,
	}, stats)
}

func TestOutcomeMark(t *testing.T) {
	assert.Equal(t, "YIELD", outcomeMark(ir.OutcomeYielded))
	assert.Equal(t, "STALL", outcomeMark(ir.OutcomeExhausted))
	assert.Equal(t, "other", outcomeMark(ir.Outcome("other")))
}
