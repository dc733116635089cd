package vsarsa

import (
	"testing"

	"github.com/samuelfneumann/autolearn/agent/schedule"
	"github.com/samuelfneumann/autolearn/initwfn"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// chain is a two-state environment: the first action always leads to a
// terminal state with reward 1
type chain struct{}

func (chain) Name() string { return "Chain" }

func (chain) Reset() (ts.TimeStep, error) {
	return ts.New(ts.First, 0, 1, mat.NewVecDense(1, []float64{1}), 0), nil
}

func (chain) Step(*mat.VecDense) (ts.TimeStep, bool, error) {
	return ts.New(ts.Last, 1, 1, mat.NewVecDense(1, []float64{1}), 1), true,
		nil
}

func (chain) ObservationSpec() spec.Environment {
	return spec.NewEnvironment(mat.NewVecDense(1, nil), spec.Observation,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		spec.Continuous)
}

func (chain) ActionSpec() spec.Environment {
	return spec.NewDiscreteAction(2)
}

func config(t *testing.T, stepSize float64) Config {
	t.Helper()
	zeroes, err := initwfn.NewZeroes()
	require.NoError(t, err)
	c := Config{
		Solver: solver.FromConfig(solver.VanillaConfig{StepSize: stepSize,
			Batch: 1}),
		Epsilon: schedule.Linear{Start: 0, End: 0},
	}
	c.Init = zeroes
	return c
}

func TestLearnsTerminalReward(t *testing.T) {
	a, err := Configure(config(t, 0.1)).Instantiate(chain{}, writer.Dummy{})
	require.NoError(t, err)
	v := a.(*VSarsa)

	env := chain{}
	for i := 0; i < 20; i++ {
		step, err := env.Reset()
		require.NoError(t, err)
		action, err := v.Act(step, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, action.AtVec(0))

		step, _, err = env.Step(action)
		require.NoError(t, err)
		_, err = v.Act(step, step.Reward)
		require.NoError(t, err)
	}

	values, err := v.Q().Eval(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, values.At(0, 0), 1e-3)
	assert.Equal(t, 20, v.Q().Updates())
	assert.Equal(t, 20, v.Q().Episodes())
}

func TestInvalidConfig(t *testing.T) {
	a, err := Configure(config(t, -1)).Instantiate(chain{}, writer.Dummy{})
	assert.True(t, preset.IsConfigurationError(err))
	assert.Nil(t, a)

	c := config(t, 0.1)
	c.Epsilon = schedule.Linear{Start: 2}
	_, err = Configure(c).Instantiate(chain{}, writer.Dummy{})
	assert.True(t, preset.IsConfigurationError(err))
}
