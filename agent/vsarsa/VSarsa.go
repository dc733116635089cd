// Package vsarsa implements online, on-policy Sarsa with function
// approximation. Each transition is learned from exactly once, as soon
// as the next action has been chosen.
package vsarsa

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent/policy"
	"github.com/samuelfneumann/autolearn/approximation"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/loss"
	"github.com/samuelfneumann/autolearn/preset"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// VSarsa implements the Sarsa algorithm with an ε-greedy policy
type VSarsa struct {
	q        *approximation.Approximation
	behavior *policy.EGreedy
	epsilon  func(int) float64
	logger   *zap.Logger

	prevObs    *mat.Dense
	prevAction int
	hasPrev    bool

	steps int
}

// New creates and returns a new VSarsa agent
func New(env environment.Environment, c Config, w writer.Writer,
	opts preset.Options) (*VSarsa, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	numActions, err := preset.DiscreteActions(env)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "environment", err)
	}
	features, err := preset.Features(env)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "environment", err)
	}
	seed := opts.Seed(c.Seed)

	fn, err := c.Network.Build(features, numActions, seed)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "network", err)
	}
	q, err := preset.NewApproximation(fn, c.Solver, approximation.Config{
		Name:               "q",
		TargetSync:         approximation.NoSync(),
		ClipGrad:           c.ClipGrad,
		CheckpointInterval: c.CheckpointInterval,
		Device:             approximation.CPU,
		LogLoss:            true,
		Logger:             opts.Logger,
	}, w)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "approximation", err)
	}

	return &VSarsa{
		q:        q,
		behavior: policy.NewEGreedy(seed + 1),
		epsilon:  c.Epsilon.Value,
		logger: opts.Logger.With(zap.String("component", "agent"),
			zap.String("agent", opts.Name)),
	}, nil
}

// Act selects the next action and updates the action value of the
// previous state and action towards
//
//	r + γ Q(s', a')
//
// where a' is the action selected in the current state.
func (v *VSarsa) Act(state ts.TimeStep, reward float64) (*mat.VecDense,
	error) {
	obs := mat.NewDense(1, state.Observation.Len(), nil)
	obs.SetRow(0, state.Features())

	next := 0
	nextValue := 0.0
	if !state.Last() {
		values, err := v.q.Eval(obs)
		if err != nil {
			return nil, fmt.Errorf("act: %v", err)
		}
		next = v.behavior.Select(values.RawRowView(0), v.epsilon(v.steps))
		nextValue = values.At(0, next)
		v.steps++
	}

	if v.hasPrev {
		target := reward + state.Discount*nextValue
		if err := v.update(target); err != nil {
			return nil, fmt.Errorf("act: %v", err)
		}
	}

	if state.Last() {
		v.hasPrev = false
		v.q.EndEpisode()
		return mat.NewVecDense(1, nil), nil
	}

	v.prevObs = obs
	v.prevAction = next
	v.hasPrev = true
	return mat.NewVecDense(1, []float64{float64(next)}), nil
}

func (v *VSarsa) update(target float64) error {
	pred, err := v.q.Forward(v.prevObs)
	if err != nil {
		return err
	}
	l, err := loss.SelectedMSE(pred, []int{v.prevAction}, []float64{target})
	if err != nil {
		return err
	}

	err = v.q.Reinforce(l)
	if approximation.IsInvalidGradient(err) {
		v.logger.Warn("skipped update", zap.Error(err))
		return nil
	}
	return err
}

// Q returns the action-value approximation of the agent
func (v *VSarsa) Q() *approximation.Approximation {
	return v.q
}
