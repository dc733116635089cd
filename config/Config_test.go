package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/autolearn/agent/dqn"
	_ "github.com/samuelfneumann/autolearn/agent/vac"
	_ "github.com/samuelfneumann/autolearn/agent/vsarsa"
	"github.com/samuelfneumann/autolearn/environment/envconfig"
	"github.com/samuelfneumann/autolearn/experiment"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/stretchr/testify/assert"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const experimentFile = `
seed: 3
budget:
  frames: 300
environments:
  - name: CartPole
    episode_cutoff: 200
    discount: 0.99
agents:
  - type: vsarsa
    config:
      init: {type: Zeroes}
      solver: {type: Vanilla, step_size: 0.01, batch: 1}
      epsilon: {start: 0.1, end: 0.1}
  - type: dqn
    name: dqn-small
    frame_stack: 2
    config:
      hidden: [8]
      activations: [relu]
      init: {type: GlorotU, gain: 1}
      solver: {type: Adam, step_size: 0.001}
      epsilon: {start: 1, end: 0.05, steps: 100}
      replay: {sample_size: 8, min_capacity: 8, max_capacity: 100}
      target: {type: hard, interval: 10}
  - type: vac
    config:
      policy: {init: {type: Zeroes}}
      policy_solver: {type: Vanilla, step_size: 0.01, batch: 1}
      value: {init: {type: Zeroes}}
      value_solver: {type: Vanilla, step_size: 0.01, batch: 1}
`

func write(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(write(t, experimentFile))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, experiment.DefaultDir, c.Dir)
	assert.Equal(t, 1, c.Runs)
	assert.Equal(t, uint64(3), c.Seed)
	assert.Equal(t, 300, c.Budget.Frames)
	assert.Equal(t, envconfig.Cartpole, c.Environments[0].Environment)

	presets, err := c.Presets(zap.NewNop())
	require.NoError(t, err)
	require.Len(t, presets, 3)
	assert.Equal(t, "vsarsa", presets[0].Name())
	assert.Equal(t, "dqn-small", presets[1].Name())
	assert.Equal(t, "vac", presets[2].Name())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTOLEARN_DIR", "/tmp/elsewhere")
	t.Setenv("AUTOLEARN_BUDGET_FRAMES", "0")
	t.Setenv("AUTOLEARN_BUDGET_EPISODES", "12")
	t.Setenv("AUTOLEARN_OPTIONS_QUIET", "true")
	t.Setenv("AUTOLEARN_RUNS", "2")

	c, err := Load(write(t, experimentFile))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "/tmp/elsewhere", c.Dir)
	assert.Equal(t, 0, c.Budget.Frames)
	assert.Equal(t, 12, c.Budget.Episodes)
	assert.True(t, c.Options.Quiet)

	jobs, err := c.Jobs(zap.NewNop())
	require.NoError(t, err)
	require.Len(t, jobs, 6)
	assert.Equal(t, uint64(3), jobs[0].Seed)
	assert.Equal(t, uint64(4), jobs[1].Seed)
	assert.Equal(t, filepath.Join("/tmp/elsewhere", "seed_4"), jobs[1].Dir)
	assert.Equal(t, experiment.Episodes(12), jobs[0].Budget)
}

func TestInvalidEnvOverride(t *testing.T) {
	t.Setenv("AUTOLEARN_RUNS", "many")
	_, err := Load(write(t, experimentFile))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no budget":      func(c *Config) { c.Budget = Budget{} },
		"no agents":      func(c *Config) { c.Agents = nil },
		"no envs":        func(c *Config) { c.Environments = nil },
		"bad env":        func(c *Config) { c.Environments[0].Discount = 2 },
		"zero runs":      func(c *Config) { c.Runs = 0 },
		"duplicate name": func(c *Config) { c.Agents[1].Name = "vsarsa" },
		"log level":      func(c *Config) { c.Log.Level = "loud" },
	} {
		t.Run(name, func(t *testing.T) {
			c, err := Load(write(t, experimentFile))
			require.NoError(t, err)
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestInvalidHyperparameters(t *testing.T) {
	src := `
budget: {frames: 10}
environments: [{name: CartPole}]
agents:
  - type: vsarsa
    config:
      init: {type: Zeroes}
      solver: {type: Vanilla, step_size: -0.1, batch: 1}
`
	c, err := Load(write(t, src))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	_, err = c.Presets(zap.NewNop())
	assert.True(t, preset.IsConfigurationError(err))
}

func TestUnknownType(t *testing.T) {
	src := `
budget: {frames: 10}
environments: [{name: CartPole}]
agents: [{type: ppo}]
`
	c, err := Load(write(t, src))
	require.NoError(t, err)
	_, err = c.Presets(zap.NewNop())
	assert.Error(t, err)
}

func TestRunJobs(t *testing.T) {
	c, err := Load(write(t, experimentFile))
	require.NoError(t, err)
	c.Dir = t.TempDir()
	c.Options.Quiet = true

	jobs, err := c.Jobs(zap.NewNop())
	require.NoError(t, err)
	results, err := experiment.RunJobs(context.Background(), jobs, 2,
		c.ExperimentOptions(zap.NewNop()))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, experiment.Done, r.State)
		assert.Equal(t, 300, r.Frames)
	}
}

func TestLogger(t *testing.T) {
	c := Default()
	logger, err := c.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	c.Log.Format = "json"
	_, err = c.Logger()
	assert.NoError(t, err)
}

func TestTileCodedMountainCar(t *testing.T) {
	src := `
budget: {episodes: 2}
options: {quiet: true}
environments:
  - name: MountainCar
    episode_cutoff: 50
    discount: 1
    tile_coding: {tilings: 4, tiles: 4}
agents:
  - type: vsarsa
    config:
      init: {type: Zeroes}
      solver: {type: Vanilla, step_size: 0.1, batch: 1}
      epsilon: {start: 0.1, end: 0.1}
`
	c, err := Load(write(t, src))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.NotNil(t, c.Environments[0].TileCoding)
	assert.Equal(t, 4, c.Environments[0].TileCoding.Tiles)
	c.Dir = t.TempDir()

	jobs, err := c.Jobs(zap.NewNop())
	require.NoError(t, err)
	results, err := experiment.RunJobs(context.Background(), jobs, 1,
		c.ExperimentOptions(zap.NewNop()))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, experiment.Done, results[0].State)
	assert.Equal(t, "MountainCar", results[0].Environment)
	assert.Equal(t, 2, results[0].Episodes)
	assert.Equal(t, 100, results[0].Frames)
}

func TestRepeatedRunsAreIndependent(t *testing.T) {
	src := `
runs: 2
budget: {frames: 10}
environments: [{name: CartPole, episode_cutoff: 10, discount: 0.99}]
agents:
  - type: dqn
    config:
      hidden: [8]
      activations: [relu]
      init: {type: GlorotU, gain: 1}
      solver: {type: Adam, step_size: 0.001}
      replay: {sample_size: 4, min_capacity: 4, max_capacity: 10}
`
	c, err := Load(write(t, src))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	jobs, err := c.Jobs(zap.NewNop())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	weights := make([]*mat.Dense, len(jobs))
	for i, j := range jobs {
		env, err := j.Env.Create(j.Seed)
		require.NoError(t, err)
		a, err := j.Preset.Instantiate(env, writer.Dummy{})
		require.NoError(t, err)
		weights[i] = a.(*dqn.DQN).Q().Function().Params()[0]
	}
	assert.False(t, mat.Equal(weights[0], weights[1]))

	// The first run is unaffected by repetition
	c.Runs = 1
	jobs, err = c.Jobs(zap.NewNop())
	require.NoError(t, err)
	env, err := jobs[0].Env.Create(jobs[0].Seed)
	require.NoError(t, err)
	a, err := jobs[0].Preset.Instantiate(env, writer.Dummy{})
	require.NoError(t, err)
	assert.True(t, mat.Equal(weights[0],
		a.(*dqn.DQN).Q().Function().Params()[0]))
}
