package mountaincar

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	// Commonly used goal position
	GoalPosition float64 = 0.45
)

// Goal implements the classic control task of reaching a goal on
// Mountain Car. Since the car is underpowered, it must rock back and
// forth from hill to hill until it reaches the goal.
//
// Rewards are -1 on each timestep and 0 for the action which
// transitions the car to the goal.
//
// Episodes end after a step limit or when the car passes the goal.
type Goal struct {
	environment.Starter
	goalEnder *environment.IntervalLimit
	stepEnder *environment.StepLimit
	goalX     float64
}

// NewGoal creates and returns a new Goal task given a Starter, the
// maximum number of episode steps (0 for no limit), and the goal x
// position.
func NewGoal(s environment.Starter, episodeSteps int,
	goalX float64) (*Goal, error) {
	interval := []r1.Interval{{Min: math.Inf(-1), Max: goalX}}
	goalEnder, err := environment.NewIntervalLimit(interval, []int{0})
	if err != nil {
		return nil, fmt.Errorf("newGoal: %v", err)
	}
	return &Goal{s, goalEnder, environment.NewStepLimit(episodeSteps),
		goalX}, nil
}

// GetReward returns -1 for all actions, except for an action which
// leads past the goal, which results in a reward of 0
func (g *Goal) GetReward(_, _, nextState mat.Vector) float64 {
	if nextState.AtVec(0) > g.goalX {
		return 0.0
	}
	return -1.0
}

// End determines if a timestep is the last timestep in the episode.
// If so, it changes the TimeStep's StepType to timestep.Last.
func (g *Goal) End(t *timestep.TimeStep) bool {
	if g.goalEnder.End(t) {
		return true
	}
	return g.stepEnder.End(t)
}
