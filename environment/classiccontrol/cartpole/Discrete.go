package cartpole

import (
	"fmt"
	"io"
	"os"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Discrete actions
const (
	Left  int = 0
	Right int = 1

	NumActions int = 2
)

// Discrete implements the classic control environment Cartpole with
// discrete actions.
//
// Actions are discrete, consisting of the direction to apply
// horizontal force to the cart. Legal actions are in {0, 1}:
//
//	Action		Meaning
//	  0			Apply force left
//	  1			Apply force right
//
// Illegal actions result in an error.
//
// Discrete implements the environment.Environment and
// environment.Renderer interfaces.
type Discrete struct {
	*base
	out io.Writer
}

// NewDiscrete constructs a new Cartpole environment with discrete
// actions
func NewDiscrete(t environment.Task, discount float64) *Discrete {
	return &Discrete{base: newBase(t, discount), out: os.Stdout}
}

// Name returns the name of the environment
func (c *Discrete) Name() string {
	return "CartPole"
}

// ActionSpec returns the action specification of the environment
func (c *Discrete) ActionSpec() spec.Environment {
	return spec.NewDiscreteAction(NumActions)
}

// Step takes one environmental step given action a and returns the next
// timestep, a bool indicating whether or not the episode has ended, and
// an error if the action was illegal or the environment was not reset.
func (c *Discrete) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if c.lastStep.Observation == nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: environment must " +
			"be reset before stepping")
	}
	if c.lastStep.Last() {
		return ts.TimeStep{}, false, fmt.Errorf("step: episode has ended, " +
			"environment must be reset")
	}
	if a.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"1-dimensional \n\twant(1) \n\thave(%v)", a.Len())
	}

	action := int(a.AtVec(0))
	if float64(action) != a.AtVec(0) || action < Left || action > Right {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action "+
			"%v ∉ {0, 1}", a.AtVec(0))
	}

	// Convert action (0, 1) to a direction (-1, 1)
	direction := 2*float64(action) - 1
	nextState := c.nextState(direction)

	return c.update(a, nextState)
}

// SetOutput sets where Render writes to
func (c *Discrete) SetOutput(w io.Writer) {
	c.out = w
}

// Render writes the current state of the environment
func (c *Discrete) Render() error {
	_, err := fmt.Fprintln(c.out, c.String())
	return err
}
