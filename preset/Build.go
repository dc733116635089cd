package preset

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/approximation"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/initwfn"
	"github.com/samuelfneumann/autolearn/network"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/spec"
	"github.com/samuelfneumann/autolearn/writer"
)

// Network describes the function approximator of an agent. Without
// hidden layers the function is linear.
type Network struct {
	Hidden      []int                 `yaml:"hidden"`
	Activations []*network.Activation `yaml:"activations"`
	Init        *initwfn.InitWFn      `yaml:"init"`
}

// Validate checks that the Network can be built
func (n Network) Validate() error {
	if len(n.Hidden) != len(n.Activations) {
		return fmt.Errorf("invalid number of activations\n\twant(%v)"+
			"\n\thave(%v)", len(n.Hidden), len(n.Activations))
	}
	for i, size := range n.Hidden {
		if size < 1 {
			return fmt.Errorf("hidden layer %v must have a positive size"+
				"\n\thave(%v)", i, size)
		}
		if n.Activations[i] == nil {
			return fmt.Errorf("missing activation for hidden layer %v", i)
		}
	}
	if len(n.Hidden) > 0 && n.Init == nil {
		return fmt.Errorf("missing weight initializer")
	}
	return nil
}

// Build returns the function described by the Network with the given
// number of inputs and outputs. Two calls with the same seed return
// identical functions.
func (n Network) Build(features, outputs int,
	seed uint64) (network.Function, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if len(n.Hidden) == 0 {
		return network.NewLinear(features, outputs, n.Init, seed)
	}
	return network.NewMLP(features, outputs, n.Hidden, n.Activations, n.Init,
		seed)
}

// NewApproximation binds a fresh copy of opt to fn and returns the
// resulting Approximation
func NewApproximation(fn network.Function, opt *solver.Solver,
	cfg approximation.Config,
	w writer.Writer) (*approximation.Approximation, error) {
	if opt == nil {
		return nil, fmt.Errorf("missing solver")
	}
	bound := opt.Clone()
	if err := bound.Bind(fn.Params(), fn.Grads()); err != nil {
		return nil, err
	}
	return approximation.New(fn, bound, cfg, w)
}

// DiscreteActions returns the number of actions of an environment whose
// actions are discrete, one-dimensional, and enumerated from 0
func DiscreteActions(env environment.Environment) (int, error) {
	a := env.ActionSpec()
	if a.Cardinality != spec.Discrete {
		return 0, fmt.Errorf("cannot use non-discrete actions")
	}
	if a.Dims() != 1 {
		return 0, fmt.Errorf("actions must be 1-dimensional\n\twant(1)"+
			"\n\thave(%v)", a.Dims())
	}
	if a.LowerBound.AtVec(0) != 0 {
		return 0, fmt.Errorf("actions must be enumerated starting from 0")
	}
	return a.NumActions(), nil
}

// Features returns the number of observation features of env
func Features(env environment.Environment) (int, error) {
	n := env.ObservationSpec().Dims()
	if n < 1 {
		return 0, fmt.Errorf("observations must have at least one feature")
	}
	return n, nil
}
