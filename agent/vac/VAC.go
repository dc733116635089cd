// Package vac implements the online vanilla actor-critic algorithm with
// a softmax policy. The critic learns state values with one-step TD
// and the actor follows the policy gradient weighted by the TD error.
package vac

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

// VAC implements the vanilla actor-critic algorithm
type VAC struct {
	policy *approximation.Approximation
	value  *approximation.Approximation
	sample *policy.Softmax
	logger *zap.Logger

	prevObs    *mat.Dense
	prevAction int
	hasPrev    bool
}

// New creates and returns a new VAC agent
func New(env environment.Environment, c Config, w writer.Writer,
	opts preset.Options) (*VAC, error) {
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

	approxConfig := func(name string) approximation.Config {
		return approximation.Config{
			Name:               name,
			TargetSync:         approximation.NoSync(),
			ClipGrad:           c.ClipGrad,
			CheckpointInterval: c.CheckpointInterval,
			Device:             approximation.CPU,
			LogLoss:            true,
			Logger:             opts.Logger,
		}
	}

	policyFn, err := c.Policy.Build(features, numActions, seed)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "policy", err)
	}
	pi, err := preset.NewApproximation(policyFn, c.PolicySolver,
		approxConfig("policy"), w)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "policy", err)
	}

	valueFn, err := c.Value.Build(features, 1, seed+1)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "value", err)
	}
	v, err := preset.NewApproximation(valueFn, c.ValueSolver,
		approxConfig("v"), w)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "value", err)
	}

	return &VAC{
		policy: pi,
		value:  v,
		sample: policy.NewSoftmax(seed + 2),
		logger: opts.Logger.With(zap.String("component", "agent"),
			zap.String("agent", opts.Name)),
	}, nil
}

// Act updates the critic and actor on the transition into state and
// samples the next action from the policy
func (v *VAC) Act(state ts.TimeStep, reward float64) (*mat.VecDense,
	error) {
	obs := mat.NewDense(1, state.Observation.Len(), nil)
	obs.SetRow(0, state.Features())

	if v.hasPrev {
		if err := v.update(obs, state, reward); err != nil {
			return nil, fmt.Errorf("act: %v", err)
		}
	}

	if state.Last() {
		v.hasPrev = false
		v.policy.EndEpisode()
		v.value.EndEpisode()
		return mat.NewVecDense(1, nil), nil
	}

	logits, err := v.policy.Eval(obs)
	if err != nil {
		return nil, fmt.Errorf("act: %v", err)
	}
	a := v.sample.Select(logits.RawRowView(0))

	v.prevObs = obs
	v.prevAction = a
	v.hasPrev = true
	return mat.NewVecDense(1, []float64{float64(a)}), nil
}

// update performs one critic and one actor step using the TD error
//
//	δ = r + γ v(s') - v(s)
func (v *VAC) update(obs *mat.Dense, state ts.TimeStep,
	reward float64) error {
	nextValue := 0.0
	if !state.Last() {
		next, err := v.value.Eval(obs)
		if err != nil {
			return err
		}
		nextValue = next.At(0, 0)
	}
	target := reward + state.Discount*nextValue

	pred, err := v.value.Forward(v.prevObs)
	if err != nil {
		return err
	}
	tdError := target - pred.At(0, 0)
	valueLoss, err := loss.MSE(pred, mat.NewDense(1, 1, []float64{target}))
	if err != nil {
		return err
	}
	if err := v.reinforce(v.value, valueLoss); err != nil {
		return err
	}

	logits, err := v.policy.Forward(v.prevObs)
	if err != nil {
		return err
	}
	policyLoss, err := loss.PolicyGradient(logits, []int{v.prevAction},
		[]float64{tdError})
	if err != nil {
		return err
	}
	return v.reinforce(v.policy, policyLoss)
}

func (v *VAC) reinforce(a *approximation.Approximation,
	l approximation.Loss) error {
	err := a.Reinforce(l)
	if approximation.IsInvalidGradient(err) {
		v.logger.Warn("skipped update", zap.Error(err))
		return nil
	}
	return err
}

// Policy returns the policy approximation of the agent
func (v *VAC) Policy() *approximation.Approximation {
	return v.policy
}

// Value returns the state-value approximation of the agent
func (v *VAC) Value() *approximation.Approximation {
	return v.value
}
