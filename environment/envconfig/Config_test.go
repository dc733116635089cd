package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestCreateCartpole(t *testing.T) {
	env, err := NewConfig(Cartpole, 200, 0.99).Create(1)
	require.NoError(t, err)
	assert.Equal(t, "CartPole", env.Name())
	assert.Equal(t, 4, env.ObservationSpec().Dims())
	assert.Equal(t, 2, env.ActionSpec().NumActions())
}

func TestCreateClassicControl(t *testing.T) {
	for _, tc := range []struct {
		name       EnvName
		features   int
		numActions int
	}{
		{Cartpole, 4, 2},
		{MountainCar, 2, 3},
		{Acrobot, 4, 3},
	} {
		t.Run(string(tc.name), func(t *testing.T) {
			env, err := NewConfig(tc.name, 10, 1).Create(3)
			require.NoError(t, err)
			assert.Equal(t, string(tc.name), env.Name())
			assert.Equal(t, tc.features, env.ObservationSpec().Dims())
			assert.Equal(t, tc.numActions, env.ActionSpec().NumActions())

			step, err := env.Reset()
			require.NoError(t, err)
			assert.True(t, env.ObservationSpec().Contains(step.Observation))
		})
	}
}

func TestMountainCarStartsAtRest(t *testing.T) {
	env, err := NewConfig(MountainCar, 10, 1).Create(3)
	require.NoError(t, err)
	step, err := env.Reset()
	require.NoError(t, err)
	assert.Equal(t, 0.0, step.Observation.AtVec(1))
	assert.GreaterOrEqual(t, step.Observation.AtVec(0), -0.6)
	assert.LessOrEqual(t, step.Observation.AtVec(0), -0.4)
}

func TestSameSeedSameStart(t *testing.T) {
	a, err := NewConfig(Cartpole, 200, 0.99).Create(7)
	require.NoError(t, err)
	b, err := NewConfig(Cartpole, 200, 0.99).Create(7)
	require.NoError(t, err)

	sa, err := a.Reset()
	require.NoError(t, err)
	sb, err := b.Reset()
	require.NoError(t, err)
	assert.Equal(t, sa.Features(), sb.Features())
}

func TestValidate(t *testing.T) {
	assert.Error(t, NewConfig("Nope", 10, 0.9).Validate())
	assert.Error(t, NewConfig(Cartpole, -1, 0.9).Validate())
	assert.Error(t, NewConfig(Cartpole, 10, 1.5).Validate())

	_, err := NewConfig("Nope", 10, 0.9).Create(0)
	assert.Error(t, err)
}

func TestTileCoding(t *testing.T) {
	c := NewConfig(MountainCar, 10, 1)
	c.TileCoding = &TileCoding{Tilings: 4, Tiles: 8}
	env, err := c.Create(1)
	require.NoError(t, err)
	assert.Equal(t, "MountainCar", env.Name())
	assert.Equal(t, 4*8*8+1, env.ObservationSpec().Dims())

	step, err := env.Reset()
	require.NoError(t, err)
	assert.Equal(t, 5.0, floats.Sum(step.Features()))

	c.TileCoding = &TileCoding{Tilings: 0, Tiles: 8}
	assert.Error(t, c.Validate())

	// Cart velocities are unbounded
	c = NewConfig(Cartpole, 10, 1)
	c.TileCoding = &TileCoding{Tilings: 1, Tiles: 4}
	_, err = c.Create(1)
	assert.Error(t, err)
}
