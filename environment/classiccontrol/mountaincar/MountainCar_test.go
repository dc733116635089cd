package mountaincar

import (
	"bytes"
	"testing"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func newTestEnv(t *testing.T, cutoff int) *Discrete {
	t.Helper()
	s := environment.NewUniformStarter([]r1.Interval{
		{Min: -0.6, Max: -0.4},
		{Min: 0, Max: 0},
	}, 3)
	task, err := NewGoal(s, cutoff, GoalPosition)
	require.NoError(t, err)
	return NewDiscrete(task, 1)
}

func TestSpecs(t *testing.T) {
	m := newTestEnv(t, 100)
	assert.Equal(t, "MountainCar", m.Name())
	assert.Equal(t, 2, m.ObservationSpec().Dims())
	assert.Equal(t, 3, m.ActionSpec().NumActions())
}

func TestStepLimit(t *testing.T) {
	m := newTestEnv(t, 50)
	_, err := m.Reset()
	require.NoError(t, err)

	coast := mat.NewVecDense(1, []float64{float64(Coast)})
	for i := 1; i <= 50; i++ {
		step, done, err := m.Step(coast)
		require.NoError(t, err)
		assert.Equal(t, -1.0, step.Reward)
		assert.Equal(t, i == 50, done)
	}

	_, _, err = m.Step(coast)
	assert.Error(t, err)
}

func TestRockingReachesGoal(t *testing.T) {
	m := newTestEnv(t, 0)
	step, err := m.Reset()
	require.NoError(t, err)

	// Accelerating in the direction of travel builds momentum
	done := false
	for i := 0; i < 1000 && !done; i++ {
		action := Right
		if step.Observation.AtVec(1) < 0 {
			action = Left
		}
		step, done, err = m.Step(mat.NewVecDense(1, []float64{float64(action)}))
		require.NoError(t, err)
	}
	require.True(t, done)
	assert.Equal(t, 0.0, step.Reward)
	assert.Greater(t, step.Observation.AtVec(0), GoalPosition)
}

func TestIllegalAction(t *testing.T) {
	m := newTestEnv(t, 100)
	_, err := m.Reset()
	require.NoError(t, err)
	_, _, err = m.Step(mat.NewVecDense(1, []float64{3}))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	m := newTestEnv(t, 100)
	var out bytes.Buffer
	m.SetOutput(&out)
	assert.Error(t, m.Render())

	_, err := m.Reset()
	require.NoError(t, err)
	require.NoError(t, m.Render())
	assert.Contains(t, out.String(), "🚗")
}
