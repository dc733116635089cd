package initwfn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformConfig implements a configuration of a weight initializer
// that samples weights uniformly from [Low, High).
type UniformConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	return newInitWFn(UniformConfig{Low: low, High: high})
}

// Type returns the type of the weight initializer created using this
// config
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create returns the seeded weight initialization algorithm
func (u UniformConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		return sample(distuv.Uniform{Min: u.Low, Max: u.High, Src: src},
			rows*cols)
	}
}
