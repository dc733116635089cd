// Package dqn implements the deep Q-learning agent. Action values are
// regressed towards one-step Q-learning targets computed by a target
// network on batches sampled from an experience replay buffer.
package dqn

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent/policy"
	"github.com/samuelfneumann/autolearn/approximation"
	"github.com/samuelfneumann/autolearn/buffer/expreplay"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/loss"
	"github.com/samuelfneumann/autolearn/preset"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DQN implements the deep Q-learning algorithm with an ε-greedy
// behaviour policy
type DQN struct {
	q        *approximation.Approximation
	replay   *expreplay.Buffer
	behavior *policy.EGreedy
	config   Config

	numActions int
	logger     *zap.Logger

	// Keep track of previous states and actions to add to replay buffer
	prevStep   ts.TimeStep
	prevAction *mat.VecDense
	hasPrev    bool

	steps int
	eval  bool // Whether or not in evaluation mode
}

// New creates and returns a new DQN agent
func New(env environment.Environment, c Config, w writer.Writer,
	opts preset.Options) (*DQN, error) {
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
		TargetSync:         c.Target,
		ClipGrad:           c.ClipGrad,
		CheckpointInterval: c.CheckpointInterval,
		Device:             approximation.CPU,
		LogLoss:            true,
		Logger:             opts.Logger,
	}, w)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "approximation", err)
	}

	replay, err := c.ExpReplay.Create(features, 1, seed+1)
	if err != nil {
		return nil, preset.Invalid(opts.Name, "replay", err)
	}

	return &DQN{
		q:          q,
		replay:     replay,
		behavior:   policy.NewEGreedy(seed + 2),
		config:     c,
		numActions: numActions,
		logger: opts.Logger.With(zap.String("component", "agent"),
			zap.String("agent", opts.Name)),
	}, nil
}

// Act records the transition into state, performs a gradient step if
// one is due, and selects the next action
func (d *DQN) Act(state ts.TimeStep, reward float64) (*mat.VecDense,
	error) {
	if d.hasPrev && !d.eval {
		t := ts.NewTransition(d.prevStep, d.prevAction, state, reward)
		if err := d.replay.Add(t); err != nil {
			return nil, fmt.Errorf("act: %v", err)
		}
		if d.config.UpdateInterval <= 1 ||
			d.steps%d.config.UpdateInterval == 0 {
			if err := d.step(); err != nil {
				return nil, fmt.Errorf("act: %v", err)
			}
		}
	}

	if state.Last() {
		d.hasPrev = false
		if !d.eval {
			d.q.EndEpisode()
		}
		return mat.NewVecDense(1, nil), nil
	}

	values, err := d.q.Eval(mat.NewDense(1, state.Observation.Len(),
		state.Features()))
	if err != nil {
		return nil, fmt.Errorf("act: %v", err)
	}

	epsilon := 0.0
	if !d.eval {
		epsilon = d.config.Epsilon.Value(d.steps)
		d.steps++
	}
	a := d.behavior.Select(values.RawRowView(0), epsilon)
	action := mat.NewVecDense(1, []float64{float64(a)})

	d.prevStep = state
	d.prevStep.Observation = mat.VecDenseCopyOf(state.Observation)
	d.prevAction = action
	d.hasPrev = true
	return mat.VecDenseCopyOf(action), nil
}

// step performs a single Q-learning update on a batch sampled from the
// replay buffer:
//
//	Q(s, a) ← r + γ max_a' Q_target(s', a')
func (d *DQN) step() error {
	batch, err := d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return err
	}

	nextValues, err := d.q.Target(batch.NextStates)
	if err != nil {
		return err
	}
	targets := make([]float64, batch.Len())
	actions := make([]int, batch.Len())
	for i := range targets {
		best := floats.Max(nextValues.RawRowView(i))
		targets[i] = batch.Rewards[i] + batch.Discounts[i]*best
		actions[i] = int(batch.Actions.At(i, 0))
	}

	pred, err := d.q.Forward(batch.States)
	if err != nil {
		return err
	}

	var l approximation.Loss
	if d.config.Loss == Huber {
		l, err = loss.SelectedHuber(pred, actions, targets,
			d.config.HuberDelta)
	} else {
		l, err = loss.SelectedMSE(pred, actions, targets)
	}
	if err != nil {
		return err
	}

	err = d.q.Reinforce(l)
	if approximation.IsInvalidGradient(err) {
		d.logger.Warn("skipped update", zap.Error(err))
		return nil
	}
	return err
}

// Eval sets the agent into evaluation mode, where the greedy policy is
// followed and no learning takes place
func (d *DQN) Eval() {
	d.eval = true
	d.hasPrev = false
}

// Train sets the agent into training mode
func (d *DQN) Train() {
	d.eval = false
	d.hasPrev = false
}

// Restore loads the action-value function and its target from the
// checkpoint an earlier run wrote to dir
func (d *DQN) Restore(dir string) error {
	path := approximation.CheckpointFile(dir, d.q.Name())
	if err := d.q.Load(path); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// IsEval returns whether the agent is in evaluation mode
func (d *DQN) IsEval() bool {
	return d.eval
}

// Q returns the action-value approximation of the agent
func (d *DQN) Q() *approximation.Approximation {
	return d.q
}
