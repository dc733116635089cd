// Package acrobot implements the classic control environment Acrobot
// with discrete actions
package acrobot

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	dt float64 = 0.2

	// Physical constants
	LinkLength1 float64 = 1.0 // Metres, length of link 1
	LinkLength2 float64 = 1.0 // Metres, length of link 2
	LinkMass1   float64 = 1.0 // Kg, mass of link 1
	LinkMass2   float64 = 1.0 // Kg, mass of link 2
	LinkCOMPos1 float64 = 0.5 // Metres, centre of mass link 1
	LinkCOMPos2 float64 = 0.5 // Metres, centre of mass link 2
	LinkMOI     float64 = 1.0 // Moments of inertia for both links
	MaxVel1     float64 = 4 * math.Pi
	MaxVel2     float64 = 9 * math.Pi
	Gravity     float64 = 9.8
	MaxAngle    float64 = math.Pi

	ObservationDims int = 4
)

// Discrete actions, each applying a torque to the base
const (
	Negative int = 0
	Zero     int = 1
	Positive int = 2

	NumActions int = 3
)

// Discrete implements the classic control environment Acrobot. In this
// environment, a double hinged and double linked pendulum is attached
// to a single actuated fixed base. Torque can be applied to the base
// to swing the acrobot around.
//
// State feature vectors have the form:
//
//	[θ1, θ2, θ̇1, θ̇2], where:
//	θ1 = angle of the first link measured from the negative y-axis
//	θ2 = angle of the second link relative to the first
//	θ̇1 = angular velocity of the first link
//	θ̇2 = angular velocity of the second link
//
// Angles are wrapped to [-π, π] and angular velocities are clipped to
// [-MaxVel1, MaxVel1] and [-MaxVel2, MaxVel2]. The dynamics follow the
// RL book and are integrated with 4th order Runge-Kutta.
//
// Actions apply a torque of -1, 0, or 1 to the base.
type Discrete struct {
	environment.Task
	lastStep        ts.TimeStep
	discount        float64
	angleBounds     r1.Interval
	velocity1Bounds r1.Interval
	velocity2Bounds r1.Interval
	out             io.Writer
}

// NewDiscrete returns a new Acrobot environment with the argument task
func NewDiscrete(t environment.Task, discount float64) *Discrete {
	return &Discrete{
		Task:            t,
		discount:        discount,
		angleBounds:     r1.Interval{Min: -MaxAngle, Max: MaxAngle},
		velocity1Bounds: r1.Interval{Min: -MaxVel1, Max: MaxVel1},
		velocity2Bounds: r1.Interval{Min: -MaxVel2, Max: MaxVel2},
		out:             os.Stdout,
	}
}

// Name returns the name of the environment
func (a *Discrete) Name() string {
	return "Acrobot"
}

// ObservationSpec returns the observation specification of the
// environment
func (a *Discrete) ObservationSpec() spec.Environment {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims, []float64{-MaxAngle,
		-MaxAngle, -MaxVel1, -MaxVel2})
	upperBound := mat.NewVecDense(ObservationDims, []float64{MaxAngle,
		MaxAngle, MaxVel1, MaxVel2})

	return spec.NewEnvironment(shape, spec.Observation, lowerBound,
		upperBound, spec.Continuous)
}

// ActionSpec returns the action specification of the environment
func (a *Discrete) ActionSpec() spec.Environment {
	return spec.NewDiscreteAction(NumActions)
}

// Reset begins a new episode and returns its first timestep
func (a *Discrete) Reset() (ts.TimeStep, error) {
	state := a.Start()
	if err := a.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	a.lastStep = ts.New(ts.First, 0, a.discount, state, 0)
	return a.lastStep, nil
}

// Step takes one environmental step given action a and returns the next
// timestep, whether or not the episode has ended, and an error if the
// action was illegal or the environment was not reset.
func (a *Discrete) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.lastStep.Observation == nil || a.lastStep.Last() {
		return ts.TimeStep{}, false, fmt.Errorf("step: environment must " +
			"be reset before stepping")
	}
	if action.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"1-dimensional \n\twant(1) \n\thave(%v)", action.Len())
	}
	act := int(action.AtVec(0))
	if float64(act) != action.AtVec(0) || act < Negative || act > Positive {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action "+
			"%v ∉ {0, 1, 2}", action.AtVec(0))
	}

	newState := a.nextState(float64(act - Zero))

	reward := a.GetReward(a.lastStep.Observation, action, newState)
	nextStep := ts.New(ts.Mid, reward, a.discount, newState,
		a.lastStep.Number+1)
	a.End(&nextStep)

	a.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState returns the state reached by applying torque to the base
func (a *Discrete) nextState(torque float64) *mat.VecDense {
	s := a.lastStep.Observation

	augmented := mat.NewVecDense(ObservationDims+1, nil)
	augmented.SliceVec(0, ObservationDims).(*mat.VecDense).CopyVec(s)
	augmented.SetVec(ObservationDims, torque)

	next := rk4(dsDt, augmented, dt)
	ns := mat.VecDenseCopyOf(next.SliceVec(0, ObservationDims))

	ns.SetVec(0, floatutils.WrapInterval(ns.AtVec(0), a.angleBounds))
	ns.SetVec(1, floatutils.WrapInterval(ns.AtVec(1), a.angleBounds))
	ns.SetVec(2, floatutils.ClipInterval(ns.AtVec(2), a.velocity1Bounds))
	ns.SetVec(3, floatutils.ClipInterval(ns.AtVec(3), a.velocity2Bounds))

	return ns
}

// validateState checks that a state lies within the bounds of the
// environment
func (a *Discrete) validateState(state *mat.VecDense) error {
	if l := state.Len(); l != ObservationDims {
		return fmt.Errorf("illegal state length \n\twant(%v) \n\thave(%v)",
			ObservationDims, l)
	}
	bounds := []r1.Interval{a.angleBounds, a.angleBounds, a.velocity1Bounds,
		a.velocity2Bounds}
	names := []string{"angle 1", "angle 2", "angular velocity 1",
		"angular velocity 2"}
	for i, b := range bounds {
		if state.AtVec(i) < b.Min || state.AtVec(i) > b.Max {
			return fmt.Errorf("%v %v out of bounds %v", names[i],
				state.AtVec(i), b)
		}
	}
	return nil
}

// SetOutput sets where Render writes to
func (a *Discrete) SetOutput(w io.Writer) {
	a.out = w
}

// Render writes the current state of the environment
func (a *Discrete) Render() error {
	_, err := fmt.Fprintln(a.out, a.String())
	return err
}

// String implements the fmt.Stringer interface
func (a *Discrete) String() string {
	state := a.lastStep.Observation
	if state == nil {
		return "Acrobot  |  not started"
	}
	return fmt.Sprintf("Acrobot  |  θ1: %.3f  |  θ2: %.3f  |  θ̇1: %.3f  |"+
		"  θ̇2: %.3f", state.AtVec(0), state.AtVec(1), state.AtVec(2),
		state.AtVec(3))
}

// dsDt calculates ds/dt of the state augmented with the applied torque
func dsDt(augmented *mat.VecDense) *mat.VecDense {
	m1, m2 := LinkMass1, LinkMass2
	l1 := LinkLength1
	lc1, lc2 := LinkCOMPos1, LinkCOMPos2
	i1, i2 := LinkMOI, LinkMOI
	g := Gravity

	theta1, theta2 := augmented.AtVec(0), augmented.AtVec(1)
	dtheta1, dtheta2 := augmented.AtVec(2), augmented.AtVec(3)
	torque := augmented.AtVec(4)

	d1 := m1*lc1*lc1 + m2*(l1*l1+lc2*lc2+2*l1*lc2*math.Cos(theta2)) + i1 + i2
	d2 := m2*(lc2*lc2+l1*lc2*math.Cos(theta2)) + i2

	phi2 := m2 * lc2 * g * math.Cos(theta1+theta2-math.Pi/2)
	phi1 := -m2*l1*lc2*dtheta2*dtheta2*math.Sin(theta2) -
		2*m2*l1*lc2*dtheta2*dtheta1*math.Sin(theta2) +
		(m1*lc1+m2*l1)*g*math.Cos(theta1-math.Pi/2) + phi2

	ddtheta2 := (torque + d2/d1*phi1 -
		m2*l1*lc2*dtheta1*dtheta1*math.Sin(theta2) - phi2) /
		(m2*lc2*lc2 + i2 - d2*d2/d1)
	ddtheta1 := -(d2*ddtheta2 + phi1) / d1

	// The torque is constant over the step
	return mat.NewVecDense(5, []float64{dtheta1, dtheta2, ddtheta1,
		ddtheta2, 0})
}

// rk4 integrates y' = derivs(y) over a single step of length h using
// 4th order Runge-Kutta
func rk4(derivs func(*mat.VecDense) *mat.VecDense, y0 *mat.VecDense,
	h float64) *mat.VecDense {
	n := y0.Len()
	input := mat.NewVecDense(n, nil)

	k1 := derivs(y0)
	input.AddScaledVec(y0, h/2, k1)
	k2 := derivs(input)
	input.AddScaledVec(y0, h/2, k2)
	k3 := derivs(input)
	input.AddScaledVec(y0, h, k3)
	k4 := derivs(input)

	sum := mat.NewVecDense(n, nil)
	sum.CopyVec(k1)
	sum.AddScaledVec(sum, 2, k2)
	sum.AddScaledVec(sum, 2, k3)
	sum.AddVec(sum, k4)

	y := mat.NewVecDense(n, nil)
	y.AddScaledVec(y0, h/6, sum)
	return y
}
