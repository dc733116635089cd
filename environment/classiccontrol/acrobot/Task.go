package acrobot

import (
	"math"

	"github.com/samuelfneumann/autolearn/environment"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// GoalHeight is the height above the base which the tip of the
// acrobot must reach in the classic control problem
const GoalHeight float64 = LinkLength1

// SwingUp implements the classic control Acrobot task where the
// agent must swing the tip of the second link above some set height.
//
// A reward of -1 is given on all timesteps except for the timestep
// which transitions the tip above the goal height, on which the reward
// is 0. Episodes end when the tip swings above the goal height or a
// step limit is reached.
type SwingUp struct {
	environment.Starter
	stepEnder  *environment.StepLimit
	goalHeight float64
}

// NewSwingUp returns a new SwingUp task with start state distribution
// s, episodic step limit stepLimit (0 for no limit), and goal height
// goalHeight
func NewSwingUp(s environment.Starter, stepLimit int,
	goalHeight float64) *SwingUp {
	return &SwingUp{s, environment.NewStepLimit(stepLimit), goalHeight}
}

// AtGoal returns whether the tip of the acrobot is above the goal
// height in state
func (s *SwingUp) AtGoal(state mat.Vector) bool {
	theta1, theta2 := state.AtVec(0), state.AtVec(1)
	height := -LinkLength1*math.Cos(theta1) -
		LinkLength2*math.Cos(theta1+theta2)
	return height > s.goalHeight
}

// End determines if a timestep is the last timestep in the episode.
// If so, it changes the TimeStep's StepType to timestep.Last.
func (s *SwingUp) End(t *ts.TimeStep) bool {
	if s.AtGoal(t.Observation) {
		t.StepType = ts.Last
		return true
	}
	return s.stepEnder.End(t)
}

// GetReward returns 0 for a transition into the goal and -1 otherwise
func (s *SwingUp) GetReward(_, _, nextState mat.Vector) float64 {
	if s.AtGoal(nextState) {
		return 0
	}
	return -1
}
