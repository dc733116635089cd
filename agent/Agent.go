// Package agent defines the interface between agents and the
// experiment loop that drives them
package agent

import (
	ts "github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent selects actions and learns from the interaction with an
// environment.
//
// Act is called once per environment step with the current state and
// the reward received on the transition into that state (0 on the
// first step of an episode). When the state is terminal, Act is called
// exactly once more so that the agent can learn from the final
// transition. The action returned for a terminal state is never
// executed.
//
// Agents own their learning state, including when updates happen.
// An Agent is driven by a single goroutine.
type Agent interface {
	Act(state ts.TimeStep, reward float64) (*mat.VecDense, error)
}

// Closer is an Agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Evaluator is an Agent that can switch between learning and greedy
// evaluation
type Evaluator interface {
	Agent
	Eval()
	Train()
	IsEval() bool
}

// Restorer is an Agent that can restore its learned parameters from
// the checkpoints of an earlier run, written to dir
type Restorer interface {
	Agent
	Restore(dir string) error
}
