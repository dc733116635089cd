package vac

import (
	"testing"

	"github.com/samuelfneumann/autolearn/agent/policy"
	"github.com/samuelfneumann/autolearn/initwfn"
	"github.com/samuelfneumann/autolearn/network"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// bandit is a one-step environment where action 1 has reward 1 and
// action 0 has reward 0
type bandit struct{}

func (bandit) Name() string { return "Bandit" }

func (bandit) Reset() (ts.TimeStep, error) {
	return ts.New(ts.First, 0, 1, mat.NewVecDense(1, []float64{1}), 0), nil
}

func (bandit) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	return ts.New(ts.Last, a.AtVec(0), 1, mat.NewVecDense(1, []float64{1}),
		1), true, nil
}

func (bandit) ObservationSpec() spec.Environment {
	return spec.NewEnvironment(mat.NewVecDense(1, nil), spec.Observation,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		spec.Continuous)
}

func (bandit) ActionSpec() spec.Environment {
	return spec.NewDiscreteAction(2)
}

func config(t *testing.T, stepSize float64) Config {
	t.Helper()
	zeroes, err := initwfn.NewZeroes()
	require.NoError(t, err)
	s := solver.FromConfig(solver.VanillaConfig{StepSize: stepSize, Batch: 1})
	return Config{
		Policy:       preset.Network{Init: zeroes},
		PolicySolver: s,
		Value:        preset.Network{Init: zeroes},
		ValueSolver:  s,
		Seed:         3,
	}
}

func TestLearnsBestArm(t *testing.T) {
	a, err := Configure(config(t, 0.1)).Instantiate(bandit{}, writer.Dummy{})
	require.NoError(t, err)
	v := a.(*VAC)

	env := bandit{}
	for i := 0; i < 300; i++ {
		step, err := env.Reset()
		require.NoError(t, err)
		action, err := v.Act(step, 0)
		require.NoError(t, err)
		step, _, err = env.Step(action)
		require.NoError(t, err)
		_, err = v.Act(step, step.Reward)
		require.NoError(t, err)
	}

	logits, err := v.Policy().Eval(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	probs := policy.Probabilities(logits.RawRowView(0))
	assert.Greater(t, probs[1], 0.9)
	assert.Equal(t, 300, v.Value().Updates())
	assert.Equal(t, 300, v.Policy().Episodes())
}

func TestMLPPolicy(t *testing.T) {
	c := config(t, 0.01)
	init, err := initwfn.NewGlorotU(1)
	require.NoError(t, err)
	c.Policy = preset.Network{
		Hidden:      []int{4},
		Activations: []*network.Activation{network.TanH()},
		Init:        init,
	}
	a, err := Configure(c).Instantiate(bandit{}, writer.Dummy{})
	require.NoError(t, err)

	action, err := a.Act(ts.New(ts.First, 0, 1, mat.NewVecDense(1,
		[]float64{1}), 0), 0)
	require.NoError(t, err)
	assert.Contains(t, []float64{0, 1}, action.AtVec(0))
}

func TestInvalidConfig(t *testing.T) {
	c := config(t, 0.1)
	c.ValueSolver = nil
	a, err := Configure(c).Instantiate(bandit{}, writer.Dummy{})
	assert.True(t, preset.IsConfigurationError(err))
	assert.Nil(t, a)

	c = config(t, 0.1)
	c.Policy.Hidden = []int{3}
	assert.True(t, preset.IsConfigurationError(Configure(c).Validate()))
}
