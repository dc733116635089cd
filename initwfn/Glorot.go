package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64 `yaml:"gain"`
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the seeded weight initialization algorithm
func (g GlorotUConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		limit := g.Gain * math.Sqrt(6.0/float64(rows+cols))
		return sample(distuv.Uniform{Min: -limit, Max: limit, Src: src},
			rows*cols)
	}
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64 `yaml:"gain"`
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create returns the seeded weight initialization algorithm
func (g GlorotNConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		std := g.Gain * math.Sqrt(2.0/float64(rows+cols))
		return sample(distuv.Normal{Mu: 0, Sigma: std, Src: src}, rows*cols)
	}
}

// sample draws n values from dist
func sample(dist distuv.Rander, n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}
