package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/autolearn/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func experimentFile(t *testing.T, dir string, stepSize string) string {
	t.Helper()
	src := `
dir: ` + dir + `
budget: {episodes: 100}
options: {quiet: true}
log: {level: error}
environments:
  - {name: CartPole, episode_cutoff: 50, discount: 0.99}
agents:
  - type: vsarsa
    config:
      init: {type: Zeroes}
      solver: {type: Vanilla, step_size: ` + stepSize + `, batch: 1}
      epsilon: {start: 0.1, end: 0.1}
`
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Equal(t, "dqn\nvac\nvsarsa\n", out)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", experimentFile(t, t.TempDir(), "0.01"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 agents, 1 environments, 1 runs")

	_, err = execute(t, "validate", experimentFile(t, t.TempDir(), "-1"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run", experimentFile(t, dir, "0.01"))
	require.NoError(t, err)

	rows, err := experiment.LoadReturns(filepath.Join(dir, "vsarsa",
		"CartPole", experiment.ReturnsFile))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].Episode)
}

func TestMissingEnvFile(t *testing.T) {
	_, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "nope"),
		"presets")
	assert.Error(t, err)
}
