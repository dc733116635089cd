package cartpole

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
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := environment.NewUniformStarter([]r1.Interval{bounds, bounds, bounds,
		bounds}, 42)
	task, err := NewBalance(s, cutoff, FailAngle)
	require.NoError(t, err)
	return NewDiscrete(task, 0.99)
}

func TestSpecs(t *testing.T) {
	c := newTestEnv(t, 500)
	assert.Equal(t, 4, c.ObservationSpec().Dims())
	assert.Equal(t, 2, c.ActionSpec().NumActions())
	assert.Equal(t, "CartPole", c.Name())
}

func TestStepBeforeReset(t *testing.T) {
	c := newTestEnv(t, 500)
	_, _, err := c.Step(mat.NewVecDense(1, []float64{0}))
	assert.Error(t, err)
}

func TestIllegalAction(t *testing.T) {
	c := newTestEnv(t, 500)
	_, err := c.Reset()
	require.NoError(t, err)

	for _, a := range []float64{-1, 2, 0.5} {
		_, _, err := c.Step(mat.NewVecDense(1, []float64{a}))
		assert.Error(t, err, "action %v", a)
	}
}

func TestAlwaysLeftFails(t *testing.T) {
	c := newTestEnv(t, 500)
	step, err := c.Reset()
	require.NoError(t, err)
	require.True(t, step.First())

	done := false
	steps := 0
	for !done {
		step, done, err = c.Step(mat.NewVecDense(1, []float64{float64(Left)}))
		require.NoError(t, err)
		assert.Equal(t, 1.0, step.Reward)
		steps++
		require.Less(t, steps, 500, "pushing left forever should end "+
			"the episode before the cutoff")
	}
	assert.True(t, step.Last())
	assert.Equal(t, steps, step.Number)

	// Stepping a finished episode is an error
	_, _, err = c.Step(mat.NewVecDense(1, []float64{float64(Right)}))
	assert.Error(t, err)
}

func TestStepLimit(t *testing.T) {
	c := newTestEnv(t, 3)
	_, err := c.Reset()
	require.NoError(t, err)

	var done bool
	for i := 0; i < 3; i++ {
		require.False(t, done)
		_, done, err = c.Step(mat.NewVecDense(1, []float64{float64(i % 2)}))
		require.NoError(t, err)
	}
	assert.True(t, done)
}

func TestRender(t *testing.T) {
	c := newTestEnv(t, 10)
	var buf bytes.Buffer
	c.SetOutput(&buf)

	_, err := c.Reset()
	require.NoError(t, err)
	require.NoError(t, c.Render())
	assert.Contains(t, buf.String(), "Cartpole")
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0.1, normalizeAngle(0.1), 1e-12)
	assert.InDelta(t, -3.0, normalizeAngle(2*3.141592653589793-3.0), 1e-9)
}
