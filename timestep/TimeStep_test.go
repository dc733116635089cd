package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewTransitionTerminal(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1, 2})
	next := mat.NewVecDense(2, []float64{3, 4})
	action := mat.NewVecDense(1, []float64{1})

	prev := New(First, 0, 0.99, obs, 0)
	last := New(Last, 1, 0.99, next, 1)

	tr := NewTransition(prev, action, last, 1)
	assert.True(t, tr.Done)
	assert.Equal(t, 0.0, tr.Discount)
	assert.Equal(t, 1.0, tr.Reward)

	// The transition must not alias the observations
	obs.SetVec(0, 10)
	action.SetVec(0, 5)
	assert.Equal(t, 1.0, tr.State.AtVec(0))
	assert.Equal(t, 1.0, tr.Action.AtVec(0))
}

func TestNewTransitionMid(t *testing.T) {
	prev := New(First, 0, 0.9, mat.NewVecDense(1, []float64{0}), 0)
	mid := New(Mid, -1, 0.9, mat.NewVecDense(1, []float64{1}), 1)

	tr := NewTransition(prev, mat.NewVecDense(1, nil), mid, -1)
	assert.False(t, tr.Done)
	assert.Equal(t, 0.9, tr.Discount)
}

func TestWithInfoDoesNotMutate(t *testing.T) {
	step := New(Mid, 0, 1, mat.NewVecDense(1, nil), 3)
	step.Info = map[string]interface{}{"a": 1}

	other := step.WithInfo("b", 2)
	require.Len(t, step.Info, 1)
	require.Len(t, other.Info, 2)
	assert.Equal(t, 2, other.Info["b"])
}
