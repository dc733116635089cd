package initwfn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSameSeedSameWeights(t *testing.T) {
	init, err := NewGlorotU(1.0)
	require.NoError(t, err)

	a := init.Fn(3)
	b := init.Fn(3)
	assert.Equal(t, a(4, 8), b(4, 8))
	assert.Equal(t, a(8, 2), b(8, 2))

	c := init.Fn(4)
	assert.NotEqual(t, init.Fn(3)(4, 8), c(4, 8))
}

func TestGlorotBounds(t *testing.T) {
	init, err := NewGlorotU(1.0)
	require.NoError(t, err)

	limit := 0.75 // sqrt(6 / (4 + 8)) ≈ 0.707
	for _, w := range init.Fn(1)(4, 8) {
		assert.Less(t, w, limit)
		assert.Greater(t, w, -limit)
	}
}

func TestConstant(t *testing.T) {
	init, err := NewConstant(0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, init.Fn(0)(1, 2))

	zeroes, err := NewZeroes()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, zeroes.Fn(9)(3, 1))
}

func TestUnmarshalJSON(t *testing.T) {
	init, err := NewHeN(2.0)
	require.NoError(t, err)

	data, err := json.Marshal(init)
	require.NoError(t, err)

	var decoded InitWFn
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, HeN, decoded.Type)
	assert.Equal(t, HeNConfig{Gain: 2.0}, decoded.Config)
}

func TestUnmarshalYAML(t *testing.T) {
	var decoded InitWFn
	err := yaml.Unmarshal([]byte("type: Uniform\nlow: -0.1\nhigh: 0.2\n"),
		&decoded)
	require.NoError(t, err)
	assert.Equal(t, UniformConfig{Low: -0.1, High: 0.2}, decoded.Config)

	err = yaml.Unmarshal([]byte("type: Nope\n"), &decoded)
	assert.Error(t, err)
}
