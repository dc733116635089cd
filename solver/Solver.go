// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be serialized into configuraiton files and bound to
// the parameters of a function approximator.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

var registered = map[Type]reflect.Type{
	Adam:    reflect.TypeOf(AdamConfig{}),
	Vanilla: reflect.TypeOf(VanillaConfig{}),
	RMSProp: reflect.TypeOf(RMSPropConfig{}),
}

// Solver wraps Gorgonia Solvers so that they can be serialized. A
// Solver must be bound to a set of parameters and their gradients
// before it can take a step. Each call to Bind creates a fresh Gorgonia
// Solver so that no optimizer state is shared between bindings.
type Solver struct {
	Type
	Config

	solver G.Solver
	params []*mat.Dense
	model  []G.ValueGrad
}

// newSolver returns a new solver with the given configuration
func newSolver(c Config) (*Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSolver: %v", err)
	}
	return &Solver{Type: c.Type(), Config: c}, nil
}

// FromConfig returns a new unbound Solver described by c. The
// configuration is not validated so that out-of-domain
// hyperparameters can be reported when the Solver is bound.
func FromConfig(c Config) *Solver {
	return &Solver{Type: c.Type(), Config: c}
}

// Bind binds the Solver to a set of parameters and their gradients.
// Steps update the parameters in place and zero the gradients.
func (s *Solver) Bind(params, grads []*mat.Dense) error {
	if s.Config == nil {
		return fmt.Errorf("bind: solver has no configuration")
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("bind: %v", err)
	}
	if len(params) != len(grads) {
		return fmt.Errorf("bind: number of gradients does not match "+
			"number of parameters\n\twant(%v)\n\thave(%v)", len(params),
			len(grads))
	}

	model := make([]G.ValueGrad, len(params))
	for i := range params {
		pr, pc := params[i].Dims()
		gr, gc := grads[i].Dims()
		if pr != gr || pc != gc {
			return fmt.Errorf("bind: gradient %v shape does not match "+
				"parameter\n\twant(%v, %v)\n\thave(%v, %v)", i, pr, pc, gr, gc)
		}
		v, err := view(params[i])
		if err != nil {
			return fmt.Errorf("bind: parameter %v: %v", i, err)
		}
		g, err := view(grads[i])
		if err != nil {
			return fmt.Errorf("bind: gradient %v: %v", i, err)
		}
		model[i] = valueGrad{v, g}
	}

	s.params = params
	s.model = model
	s.solver = s.Config.Create()
	return nil
}

// Bound returns whether the Solver is bound to exactly the given
// parameters
func (s *Solver) Bound(params []*mat.Dense) bool {
	if s.solver == nil || len(params) != len(s.params) {
		return false
	}
	for i := range params {
		if params[i] != s.params[i] {
			return false
		}
	}
	return true
}

// Step takes a single optimization step over the bound parameters
func (s *Solver) Step() error {
	if s.solver == nil {
		return fmt.Errorf("step: solver is not bound to any parameters")
	}
	return s.solver.Step(s.model)
}

// Clone returns an unbound copy of the Solver with the same
// configuration
func (s *Solver) Clone() *Solver {
	return &Solver{Type: s.Type, Config: s.Config}
}

// String implements the fmt.Stringer interface
func (s *Solver) String() string {
	return fmt.Sprintf("{%v Solver: %+v}", s.Type, s.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := newConfig(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, value); err != nil {
			return err
		}
	}
	*s = *FromConfig(reflect.ValueOf(value).Elem().Interface().(Config))
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. The YAML
// form is flat, e.g.
//
//	solver:
//	  type: Adam
//	  step_size: 0.001
func (s *Solver) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type Type `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	value, err := newConfig(head.Type)
	if err != nil {
		return fmt.Errorf("unmarshalYAML: line %d: %v", node.Line, err)
	}
	if err := node.Decode(value); err != nil {
		return err
	}
	*s = *FromConfig(reflect.ValueOf(value).Elem().Interface().(Config))
	return nil
}

// newConfig returns a pointer to a zero Config of type t populated
// with the defaults of that type
func newConfig(t Type) (interface{}, error) {
	ty, found := registered[t]
	if !found {
		return nil, fmt.Errorf("no such solver type %q", t)
	}
	value := reflect.New(ty)
	if d, ok := value.Interface().(defaulter); ok {
		d.setDefaults()
	}
	return value.Interface(), nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver
	Type() Type

	// Validate returns an error if any hyperparameter is out of its
	// domain
	Validate() error

	// LearningRate returns the step size of the solver
	LearningRate() float64
}

type defaulter interface {
	setDefaults()
}

// valueGrad adapts a parameter and its gradient to the Gorgonia
// ValueGrad interface
type valueGrad struct {
	value, grad *tensor.Dense
}

func (v valueGrad) Value() G.Value {
	return v.value
}

func (v valueGrad) Grad() (G.Value, error) {
	return v.grad, nil
}

// view returns a tensor sharing the backing data of m
func view(m *mat.Dense) (*tensor.Dense, error) {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		return nil, fmt.Errorf("matrix data is not contiguous")
	}
	return tensor.New(tensor.WithShape(raw.Rows, raw.Cols),
		tensor.WithBacking(raw.Data[:raw.Rows*raw.Cols])), nil
}

func checkBatch(b int) error {
	if b < 1 {
		return fmt.Errorf("batch must be positive\n\thave(%v)", b)
	}
	return nil
}

func checkStepSize(lr float64) error {
	if !(lr > 0) {
		return fmt.Errorf("step size must be positive\n\thave(%v)", lr)
	}
	return nil
}
