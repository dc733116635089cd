package body

import (
	"testing"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/environment/envconfig"
	"github.com/samuelfneumann/autolearn/preset"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// recorder is an agent that always takes action 0 and remembers every
// observation it was given
type recorder struct {
	features int
	seen     [][]float64
}

func (r *recorder) Act(state ts.TimeStep, _ float64) (*mat.VecDense, error) {
	r.seen = append(r.seen, append([]float64(nil), state.Features()...))
	return mat.NewVecDense(1, nil), nil
}

type recorderPreset struct {
	last *recorder
}

func (*recorderPreset) Name() string    { return "recorder" }
func (*recorderPreset) Validate() error { return nil }

func (p *recorderPreset) Instantiate(env environment.Environment,
	_ writer.Writer) (agent.Agent, error) {
	features, err := preset.Features(env)
	if err != nil {
		return nil, err
	}
	p.last = &recorder{features: features}
	return p.last, nil
}

func step(t ts.StepType, obs ...float64) ts.TimeStep {
	return ts.New(t, 0, 1, mat.NewVecDense(len(obs), obs), 0)
}

func TestFrameStackSizesAgent(t *testing.T) {
	env, err := envconfig.NewConfig(envconfig.Cartpole, 0, 0.99).Create(1)
	require.NoError(t, err)

	inner := &recorderPreset{}
	_, err = FrameStack(inner, 3).Instantiate(env, writer.Dummy{})
	require.NoError(t, err)
	assert.Equal(t, 12, inner.last.features)
}

func TestFrameStackStacksAndResets(t *testing.T) {
	env, err := envconfig.NewConfig(envconfig.Cartpole, 0, 0.99).Create(1)
	require.NoError(t, err)

	inner := &recorderPreset{}
	a, err := FrameStack(inner, 2).Instantiate(env, writer.Dummy{})
	require.NoError(t, err)

	steps := []ts.TimeStep{
		step(ts.First, 1), step(ts.Mid, 2), step(ts.Last, 3),
		step(ts.First, 4), step(ts.Mid, 5),
	}
	for _, s := range steps {
		_, err := a.Act(s, 0)
		require.NoError(t, err)
	}

	want := [][]float64{{1, 1}, {1, 2}, {2, 3}, {4, 4}, {4, 5}}
	assert.Equal(t, want, inner.last.seen)
}

func TestFrameStackInvalidSize(t *testing.T) {
	env, err := envconfig.NewConfig(envconfig.Cartpole, 0, 0.99).Create(1)
	require.NoError(t, err)

	a, err := FrameStack(&recorderPreset{}, 0).Instantiate(env, writer.Dummy{})
	assert.True(t, preset.IsConfigurationError(err))
	assert.Nil(t, a)
}
