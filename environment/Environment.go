// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If End returns true, it must
// also have set the StepType of the argument TimeStep to timestep.Last.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
}

// Environment implements a simulated environment that an experiment
// steps. Environments are external collaborators: agents only ever see
// the TimeSteps they produce and the specifications of their
// observation and action spaces.
type Environment interface {
	// Name identifies the environment, e.g. in the paths that run
	// output is written to
	Name() string

	// Reset starts a new episode and returns its first TimeStep
	Reset() (ts.TimeStep, error)

	// Step applies an action and returns the next TimeStep and whether
	// the episode has ended. The reward for the action is stored in
	// the returned TimeStep.
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	ObservationSpec() spec.Environment
	ActionSpec() spec.Environment
}

// Renderer is an Environment that can display its current state
type Renderer interface {
	Environment
	Render() error
}
