package initwfn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianConfig implements a configuration of a weight initializer
// that samples weights from a normal distribution.
type GaussianConfig struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

// NewGaussian returns a new Gaussian weight initializer
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	return newInitWFn(GaussianConfig{Mean: mean, StdDev: stddev})
}

// Type returns the type of the weight initializer created using this
// config
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Create returns the seeded weight initialization algorithm
func (g GaussianConfig) Create(seed uint64) Fn {
	src := rand.NewSource(seed)
	return func(rows, cols int) []float64 {
		return sample(distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: src},
			rows*cols)
	}
}
