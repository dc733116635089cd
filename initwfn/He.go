package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// HeUConfig implements a configuration of the He uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64 `yaml:"gain"`
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the seeded weight initialization algorithm. The fan in
// of a weight matrix is its number of rows.
func (h HeUConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		limit := h.Gain * math.Sqrt(6.0/float64(rows))
		return sample(distuv.Uniform{Min: -limit, Max: limit, Src: src},
			rows*cols)
	}
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64 `yaml:"gain"`
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the seeded weight initialization algorithm
func (h HeNConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		std := h.Gain * math.Sqrt(2.0/float64(rows))
		return sample(distuv.Normal{Mu: 0, Sigma: std, Src: src}, rows*cols)
	}
}
