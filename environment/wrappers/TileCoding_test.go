package wrappers

import (
	"testing"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/autolearn/environment/classiccontrol/mountaincar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func newMountainCar(t *testing.T) *mountaincar.Discrete {
	t.Helper()
	s := environment.NewUniformStarter([]r1.Interval{
		{Min: -0.6, Max: -0.4},
		{Min: 0, Max: 0},
	}, 1)
	task, err := mountaincar.NewGoal(s, 5, mountaincar.GoalPosition)
	require.NoError(t, err)
	return mountaincar.NewDiscrete(task, 1)
}

func TestTileCodedObservations(t *testing.T) {
	env, err := NewTileCoding(newMountainCar(t), [][]int{{4, 4}, {4, 4}}, 2)
	require.NoError(t, err)

	assert.Equal(t, "MountainCar", env.Name())
	assert.Equal(t, 33, env.ObservationSpec().Dims())
	assert.Equal(t, 3, env.ActionSpec().NumActions())

	step, err := env.Reset()
	require.NoError(t, err)
	assert.Equal(t, 33, step.Observation.Len())
	assert.Equal(t, 3.0, mat.Sum(step.Observation))

	for {
		var last bool
		step, last, err = env.Step(mat.NewVecDense(1, []float64{1}))
		require.NoError(t, err)
		assert.True(t, env.ObservationSpec().Contains(step.Observation))
		assert.Equal(t, -1.0, step.Reward)
		if last {
			break
		}
	}
	assert.Equal(t, 5, step.Number)
}

func TestStepErrorPassesThrough(t *testing.T) {
	env, err := NewTileCoding(newMountainCar(t), [][]int{{2, 2}}, 2)
	require.NoError(t, err)

	_, _, err = env.Step(mat.NewVecDense(1, []float64{1}))
	assert.Error(t, err)
}

func TestUnboundedObservations(t *testing.T) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := environment.NewUniformStarter([]r1.Interval{bounds, bounds, bounds,
		bounds}, 1)
	task, err := cartpole.NewBalance(s, 10, cartpole.FailAngle)
	require.NoError(t, err)

	_, err = NewTileCoding(cartpole.NewDiscrete(task, 1),
		[][]int{{4, 4, 4, 4}}, 0)
	assert.Error(t, err)
}
