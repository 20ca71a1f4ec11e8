package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.yaml"))
	touch(t, filepath.Join(dir, "a.cue"))
	touch(t, filepath.Join(dir, "nested", "c.yml"))
	touch(t, filepath.Join(dir, "notes.txt"))

	paths, err := FindScenarios(dir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yml"),
	}, paths)
}

func TestFindScenarios_Filter(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ramp_up.yaml"))
	touch(t, filepath.Join(dir, "ramp_down.yaml"))
	touch(t, filepath.Join(dir, "fan_out.yaml"))

	paths, err := FindScenarios(dir, "ramp_*")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "ramp_down.yaml"),
		filepath.Join(dir, "ramp_up.yaml"),
	}, paths)
}

func TestFindScenarios_NoMatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.yaml"))

	_, err := FindScenarios(dir, "zzz*")
	require.Error(t, err)

	var nse *NoScenariosError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "zzz*", nse.Filter)
	assert.Contains(t, err.Error(), `matching "zzz*"`)
}

func TestFindScenarios_BadFilter(t *testing.T) {
	_, err := FindScenarios(t.TempDir(), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestFindScenarios_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	touch(t, path)

	_, err := FindScenarios(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("x.yaml"))
	assert.True(t, IsScenarioFile("x.YML"))
	assert.True(t, IsScenarioFile("x.cue"))
	assert.False(t, IsScenarioFile("x.json"))
}
