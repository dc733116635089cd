// Package wrappers provides wrappers for environments
package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/utils/tilecoder"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// TileCoding wraps an environment so that the observations it returns
// are tile coded. The bounds of the tilings are the bounds of the
// wrapped environment's observation specification, which must be
// finite.
type TileCoding struct {
	environment.Environment
	coder *tilecoder.TileCoder
}

// NewTileCoding returns a new TileCoding wrapper around env using the
// tilings described by bins. See tilecoder.New for the layout of bins.
// A bias unit is always included.
func NewTileCoding(env environment.Environment, bins [][]int,
	seed uint64) (*TileCoding, error) {
	obs := env.ObservationSpec()
	bounds := make([]r1.Interval, obs.Dims())
	for i := range bounds {
		bounds[i] = r1.Interval{Min: obs.LowerBound.AtVec(i),
			Max: obs.UpperBound.AtVec(i)}
	}

	coder, err := tilecoder.New(bounds, bins, seed, true)
	if err != nil {
		return nil, fmt.Errorf("newTileCoding: %v: %v", env.Name(), err)
	}
	return &TileCoding{env, coder}, nil
}

// Reset begins a new episode and returns its tile coded first timestep
func (t *TileCoding) Reset() (ts.TimeStep, error) {
	step, err := t.Environment.Reset()
	if err != nil {
		return step, err
	}
	return t.encode(step), nil
}

// Step takes one environmental step and returns the tile coded
// timestep
func (t *TileCoding) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := t.Environment.Step(a)
	if err != nil {
		return step, last, err
	}
	return t.encode(step), last, nil
}

func (t *TileCoding) encode(step ts.TimeStep) ts.TimeStep {
	step.Observation = t.coder.Encode(step.Observation)
	return step
}

// ObservationSpec returns the observation specification of the tile
// coded environment
func (t *TileCoding) ObservationSpec() spec.Environment {
	n := t.coder.VecLength()
	upper := make([]float64, n)
	for i := range upper {
		upper[i] = 1
	}
	return spec.NewEnvironment(mat.NewVecDense(n, nil), spec.Observation,
		mat.NewVecDense(n, nil), mat.NewVecDense(n, upper), spec.Discrete)
}

// Render renders the wrapped environment if it can be rendered
func (t *TileCoding) Render() error {
	if r, ok := t.Environment.(environment.Renderer); ok {
		return r.Render()
	}
	return nil
}
