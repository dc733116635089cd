package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

func TestVanillaStep(t *testing.T) {
	s, err := NewVanilla(0.1, 1)
	require.NoError(t, err)

	params := []*mat.Dense{mat.NewDense(1, 2, []float64{1, -1})}
	grads := []*mat.Dense{mat.NewDense(1, 2, []float64{2, -4})}
	require.NoError(t, s.Bind(params, grads))
	assert.True(t, s.Bound(params))

	require.NoError(t, s.Step())
	assert.InDelta(t, 0.8, params[0].At(0, 0), 1e-12)
	assert.InDelta(t, -0.6, params[0].At(0, 1), 1e-12)
}

func TestAdamMovesAgainstGradient(t *testing.T) {
	s, err := NewDefaultAdam(0.01, 1)
	require.NoError(t, err)

	params := []*mat.Dense{mat.NewDense(2, 1, []float64{0, 0})}
	grads := []*mat.Dense{mat.NewDense(2, 1, nil)}
	require.NoError(t, s.Bind(params, grads))

	for i := 0; i < 5; i++ {
		grads[0].Set(0, 0, 1)
		grads[0].Set(1, 0, -1)
		require.NoError(t, s.Step())
	}
	assert.Less(t, params[0].At(0, 0), 0.0)
	assert.Greater(t, params[0].At(1, 0), 0.0)
}

func TestUnbound(t *testing.T) {
	s, err := NewDefaultRMSProp(0.01, 1)
	require.NoError(t, err)
	assert.Error(t, s.Step())

	params := []*mat.Dense{mat.NewDense(1, 1, nil)}
	assert.False(t, s.Bound(params))

	require.NoError(t, s.Bind(params, []*mat.Dense{mat.NewDense(1, 1, nil)}))
	other := []*mat.Dense{mat.NewDense(1, 1, nil)}
	assert.False(t, s.Bound(other))

	clone := s.Clone()
	assert.False(t, clone.Bound(params))
	assert.Equal(t, s.Config, clone.Config)
}

func TestBindShapeMismatch(t *testing.T) {
	s, err := NewVanilla(0.1, 1)
	require.NoError(t, err)

	err = s.Bind([]*mat.Dense{mat.NewDense(1, 2, nil)},
		[]*mat.Dense{mat.NewDense(2, 1, nil)})
	assert.Error(t, err)

	err = s.Bind([]*mat.Dense{mat.NewDense(1, 2, nil)}, nil)
	assert.Error(t, err)
}

func TestInvalidHyperparameters(t *testing.T) {
	_, err := NewVanilla(-0.1, 1)
	assert.Error(t, err)
	_, err = NewDefaultAdam(0.1, 0)
	assert.Error(t, err)
	_, err = NewRMSProp(0.1, 1e-8, 1.5, 1)
	assert.Error(t, err)

	s := FromConfig(VanillaConfig{StepSize: -1, Batch: 1})
	err = s.Bind([]*mat.Dense{mat.NewDense(1, 1, nil)},
		[]*mat.Dense{mat.NewDense(1, 1, nil)})
	assert.Error(t, err)
}

func TestUnmarshalYAML(t *testing.T) {
	var s Solver
	require.NoError(t, yaml.Unmarshal([]byte("type: Adam\nstep_size: 0.005\n"),
		&s))
	assert.Equal(t, Adam, s.Type)
	assert.Equal(t, AdamConfig{StepSize: 0.005, Epsilon: 1e-8, Beta1: 0.9,
		Beta2: 0.999, Batch: 1}, s.Config)

	assert.Error(t, yaml.Unmarshal([]byte("type: SGDM\n"), &s))
}

func TestUnmarshalJSON(t *testing.T) {
	s, err := NewVanilla(0.3, 2)
	require.NoError(t, err)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, VanillaConfig{StepSize: 0.3, Batch: 2}, decoded.Config)
}
