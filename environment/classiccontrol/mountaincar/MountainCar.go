// Package mountaincar implements the classic control environment
// Mountain Car with discrete actions
package mountaincar

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	MinPosition float64 = -1.2
	MaxPosition float64 = 0.6
	MaxSpeed    float64 = 0.07
	Power       float64 = 0.0015 // Engine power
	Gravity     float64 = 0.0025

	ObservationDims int = 2
)

// Discrete actions
const (
	Left  int = 0
	Coast int = 1
	Right int = 2

	NumActions int = 3
)

// Discrete implements the classic control Mountain Car environment.
// In this environment, the agent controls a car in a valley between two
// hills. The car is underpowered and cannot drive up the hill unless
// it rocks back and forth from hill to hill, using its momentum to
// gradually climb higher.
//
// State features consist of the x position of the car and its velocity.
// The sign of the velocity denotes direction. Upon reaching the minimum
// position while moving left, the velocity of the car is set to 0.
//
// Actions determine in which direction to apply full accelerating force
// to the car:
//
//	Action	Meaning
//	  0		Accelerate left
//	  1		Do nothing
//	  2		Accelerate right
//
// Illegal actions result in an error.
type Discrete struct {
	environment.Task
	positionBounds r1.Interval
	speedBounds    r1.Interval
	lastStep       ts.TimeStep
	discount       float64
	out            io.Writer
}

// NewDiscrete creates a new Mountain Car environment with the argument
// task
func NewDiscrete(t environment.Task, discount float64) *Discrete {
	return &Discrete{
		Task:           t,
		positionBounds: r1.Interval{Min: MinPosition, Max: MaxPosition},
		speedBounds:    r1.Interval{Min: -MaxSpeed, Max: MaxSpeed},
		discount:       discount,
		out:            os.Stdout,
	}
}

// Name returns the name of the environment
func (m *Discrete) Name() string {
	return "MountainCar"
}

// ObservationSpec returns the observation specification of the
// environment
func (m *Discrete) ObservationSpec() spec.Environment {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims, []float64{
		m.positionBounds.Min, m.speedBounds.Min})
	upperBound := mat.NewVecDense(ObservationDims, []float64{
		m.positionBounds.Max, m.speedBounds.Max})

	return spec.NewEnvironment(shape, spec.Observation, lowerBound,
		upperBound, spec.Continuous)
}

// ActionSpec returns the action specification of the environment
func (m *Discrete) ActionSpec() spec.Environment {
	return spec.NewDiscreteAction(NumActions)
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (m *Discrete) Reset() (ts.TimeStep, error) {
	state := m.Start()
	if err := m.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	m.lastStep = ts.New(ts.First, 0, m.discount, state, 0)
	return m.lastStep, nil
}

// Step takes one environmental step given action a and returns the next
// timestep, whether or not the episode has ended, and an error if the
// action was illegal or the environment was not reset.
func (m *Discrete) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if m.lastStep.Observation == nil || m.lastStep.Last() {
		return ts.TimeStep{}, false, fmt.Errorf("step: environment must " +
			"be reset before stepping")
	}
	if a.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"1-dimensional \n\twant(1) \n\thave(%v)", a.Len())
	}
	action := int(a.AtVec(0))
	if float64(action) != a.AtVec(0) || action < Left || action > Right {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action "+
			"%v ∉ {0, 1, 2}", a.AtVec(0))
	}

	newState := m.nextState(float64(action - Coast))

	reward := m.GetReward(m.lastStep.Observation, a, newState)
	nextStep := ts.New(ts.Mid, reward, m.discount, newState,
		m.lastStep.Number+1)
	m.End(&nextStep)

	m.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState calculates the next state given the direction of force
func (m *Discrete) nextState(force float64) *mat.VecDense {
	state := m.lastStep.Observation
	position, velocity := state.AtVec(0), state.AtVec(1)

	velocity += force*Power - Gravity*math.Cos(3*position)
	velocity = floatutils.ClipInterval(velocity, m.speedBounds)

	position += velocity
	position = floatutils.ClipInterval(position, m.positionBounds)

	if position <= m.positionBounds.Min && velocity < 0 {
		velocity = 0
	}

	return mat.NewVecDense(ObservationDims, []float64{position, velocity})
}

// validateState ensures the position and speed are within the
// environmental limits
func (m *Discrete) validateState(s mat.Vector) error {
	position := s.AtVec(0)
	if position < m.positionBounds.Min || position > m.positionBounds.Max {
		return fmt.Errorf("illegal position %v ∉ [%v, %v]", position,
			m.positionBounds.Min, m.positionBounds.Max)
	}

	speed := s.AtVec(1)
	if speed < m.speedBounds.Min || speed > m.speedBounds.Max {
		return fmt.Errorf("illegal speed %v ∉ [%v, %v]", speed,
			m.speedBounds.Min, m.speedBounds.Max)
	}
	return nil
}

// SetOutput sets where Render writes to
func (m *Discrete) SetOutput(w io.Writer) {
	m.out = w
}

// Render draws a text-based version of the environment
func (m *Discrete) Render() error {
	if m.lastStep.Observation == nil {
		return fmt.Errorf("render: environment must be reset first")
	}
	const xIndices = 16

	var b strings.Builder
	for i := 1; i < xIndices/2+1; i++ {
		b.WriteString(hillRow(xIndices, i))
		if i == 1 {
			b.WriteString("🏁")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	xPos := (m.lastStep.Observation.AtVec(0) - m.positionBounds.Min) /
		(m.positionBounds.Max - m.positionBounds.Min)
	x := int(xPos * float64(xIndices))

	for i := 0; i < xIndices; i++ {
		switch {
		case i == x:
			b.WriteString("🚗")
		case i == xIndices-1:
			b.WriteString("🏁")
		default:
			b.WriteString("=")
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(m.out, b.String())
	return err
}

// String returns a string representation of the environment
func (m *Discrete) String() string {
	state := m.lastStep.Observation
	if state == nil {
		return "Mountain Car  |  not started"
	}
	return fmt.Sprintf("Mountain Car  |  Position: %.3f  |  Speed: %.3f",
		state.AtVec(0), state.AtVec(1))
}

// hillRow returns a single row of the text-based rendering of the hill
func hillRow(xIndices, width int) string {
	return strings.Repeat("=", width) +
		strings.Repeat(" ", xIndices-2*width) +
		strings.Repeat("=", width)
}
