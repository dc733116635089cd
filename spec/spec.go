// Package spec implements specifications of the observation and action
// spaces of environments
package spec

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	default:
		return "Reward"
	}
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Environment implements an environment specification, which tells the
// type, shape, and bounds of an action, observation, discount, or reward
// in an environment.
//
// Discrete actions are described by a single dimension whose bounds
// enumerate the legal actions, e.g. bounds [0, 1] describe two actions.
type Environment struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewEnvironment constructs a new environment specification.
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewEnvironment(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Environment {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Environment{shape, t, lowerBound, upperBound, cardinality}
}

// NewDiscreteAction returns the specification of n discrete actions
// enumerated from 0.
func NewDiscreteAction(n int) Environment {
	return NewEnvironment(
		mat.NewVecDense(1, nil),
		Action,
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{float64(n - 1)}),
		Discrete,
	)
}

// Dims returns the number of dimensions the specification describes
func (e Environment) Dims() int {
	if e.Shape == nil {
		return 0
	}
	return e.Shape.Len()
}

// NumActions returns the number of discrete actions described by a
// discrete, one-dimensional action specification. It returns 0 for any
// other specification.
func (e Environment) NumActions() int {
	if e.Cardinality != Discrete || e.Dims() != 1 {
		return 0
	}
	return int(e.UpperBound.AtVec(0)-e.LowerBound.AtVec(0)) + 1
}

// Contains returns whether v lies within the bounds of the
// specification.
func (e Environment) Contains(v mat.Vector) bool {
	if v.Len() != e.Dims() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < e.LowerBound.AtVec(i) ||
			v.AtVec(i) > e.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}

func (e Environment) String() string {
	return fmt.Sprintf("{%v %v dims=%d}", e.Type, e.Cardinality, e.Dims())
}
