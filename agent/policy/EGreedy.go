// Package policy implements action selection over the outputs of
// function approximators
package policy

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over action values
type EGreedy struct {
	source rand.Source
}

// NewEGreedy returns a new EGreedy policy whose random choices are
// determined by seed
func NewEGreedy(seed uint64) *EGreedy {
	return &EGreedy{source: rand.NewSource(seed)}
}

// Select selects an action from an ε-greedy policy over the action
// values, where epsilon is the probability with which an action is
// chosen uniformly at random.
func (e *EGreedy) Select(values []float64, epsilon float64) int {
	greedyAction := Greedy(values)
	if epsilon <= 0 {
		return greedyAction
	}

	// Calculate the ε probability of choosing any action at random
	numActions := len(values)
	prob := epsilon / float64(numActions)
	actionProbabilites := make([]float64, numActions)
	for i := range actionProbabilites {
		actionProbabilites[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilites[greedyAction] += 1.0 - epsilon

	dist := distuv.NewCategorical(actionProbabilites, e.source)
	return int(dist.Rand())
}

// Greedy returns the action with the highest value. Ties are broken in
// favour of the lowest action.
func Greedy(values []float64) int {
	return floats.MaxIdx(values)
}
