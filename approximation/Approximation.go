// Package approximation implements trainable function approximations
// with an optimizer, an optional target network, gradient clipping,
// and periodic checkpointing.
package approximation

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/autolearn/network"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/writer"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Loss is the result of a differentiable loss computed on the output
// of the most recent call to Forward. Grad is the gradient of the loss
// with respect to that output and has the same shape.
type Loss struct {
	Value float64
	Grad  *mat.Dense
}

// Approximation couples a trainable function with an optimizer bound
// to its parameters and, optionally, a target copy of the function.
//
// An Approximation is owned by a single agent and is not safe for
// concurrent use.
type Approximation struct {
	name   string
	fn     network.Function
	target network.Function
	opt    *solver.Solver
	sync   Sync

	clip               float64
	checkpointInterval int
	logLoss            bool

	w      writer.Writer
	logger *zap.Logger

	updates   int
	episodes  int
	triggers  int
	forwarded bool
}

// New returns a new Approximation of fn trained by opt. The optimizer
// must already be bound to fn's parameters, otherwise
// ErrUnboundOptimizer is returned. If w is nil, a writer.Dummy is used.
func New(fn network.Function, opt *solver.Solver, cfg Config,
	w writer.Writer) (*Approximation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if fn == nil {
		return nil, fmt.Errorf("new: nil function")
	}
	if opt == nil || !opt.Bound(fn.Params()) {
		return nil, fmt.Errorf("new: %q: %w", cfg.Name, ErrUnboundOptimizer)
	}
	if w == nil {
		w = writer.Dummy{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var target network.Function
	if cfg.TargetSync.Type != None {
		target = fn.Clone()
	}

	return &Approximation{
		name:               cfg.Name,
		fn:                 fn,
		target:             target,
		opt:                opt,
		sync:               cfg.TargetSync,
		clip:               cfg.ClipGrad,
		checkpointInterval: cfg.CheckpointInterval,
		logLoss:            cfg.LogLoss,
		w:                  w,
		logger: logger.With(zap.String("component", "approximation"),
			zap.String("approximation", cfg.Name)),
	}, nil
}

// Forward computes the output of the online function in training mode.
// The next call to Reinforce computes gradients through this pass.
func (a *Approximation) Forward(x *mat.Dense) (*mat.Dense, error) {
	out, err := a.fn.Forward(x)
	if err != nil {
		return nil, err
	}
	a.forwarded = true
	return out, nil
}

// Eval computes the output of the online function without recording
// anything for a later update
func (a *Approximation) Eval(x *mat.Dense) (*mat.Dense, error) {
	return a.fn.Predict(x)
}

// Target computes the output of the target function. If no target is
// maintained, the online function is evaluated instead.
func (a *Approximation) Target(x *mat.Dense) (*mat.Dense, error) {
	if a.target == nil {
		return a.fn.Predict(x)
	}
	return a.target.Predict(x)
}

// Reinforce performs a single update of the online function given the
// loss of the most recent Forward pass.
//
// If the loss or any gradient is not finite, the optimizer step is
// skipped, the update counter is still incremented, and an
// *InvalidGradientError is returned. Callers may treat this error as a
// warning.
func (a *Approximation) Reinforce(loss Loss) error {
	if !a.forwarded {
		return ErrNoForward
	}
	a.forwarded = false

	if loss.Grad == nil {
		return fmt.Errorf("reinforce: nil loss gradient")
	}
	if err := a.fn.Backward(loss.Grad); err != nil {
		a.fn.ZeroGrad()
		return fmt.Errorf("reinforce: %w", err)
	}

	if !isFinite(loss.Value) || !gradsFinite(a.fn.Grads()) {
		a.fn.ZeroGrad()
		a.updates++
		invalid := &InvalidGradientError{Name: a.name, Update: a.updates}
		a.logger.Warn("numeric instability", zap.Int("update", a.updates),
			zap.Float64("loss", loss.Value))
		a.afterUpdate()
		return invalid
	}

	if a.clip > 0 {
		clipNorm(a.fn.Grads(), a.clip)
	}
	if err := a.opt.Step(); err != nil {
		a.fn.ZeroGrad()
		return fmt.Errorf("reinforce: %w", err)
	}
	a.fn.ZeroGrad()
	a.updates++

	if a.logLoss {
		name := "loss/" + a.name
		if err := a.w.AddScalar(name, loss.Value, a.updates); err != nil {
			a.logger.Warn("could not log loss", zap.Error(err))
		}
	}
	a.afterUpdate()
	return nil
}

// afterUpdate applies the target policy and checkpoints if needed
func (a *Approximation) afterUpdate() {
	if a.sync.trigger() == OnUpdate {
		a.tick()
	}

	if a.checkpointInterval > 0 && a.updates%a.checkpointInterval == 0 {
		if err := a.Checkpoint(); err != nil {
			a.logger.Warn("checkpoint failed", zap.Int("update", a.updates),
				zap.Error(err))
		}
	}
}

// EndEpisode notifies the Approximation that an episode has ended
func (a *Approximation) EndEpisode() {
	a.episodes++
	if a.sync.trigger() == OnEpisode {
		a.tick()
	}
}

// tick counts a single target trigger and synchronizes the target
// when due
func (a *Approximation) tick() {
	if a.target == nil {
		return
	}
	a.triggers++
	if a.triggers%a.sync.interval() != 0 {
		return
	}

	var err error
	switch a.sync.Type {
	case Hard:
		err = network.Set(a.target, a.fn)
	case Polyak:
		err = network.Polyak(a.target, a.fn, a.sync.Tau)
	}
	if err != nil {
		// Shapes of the target and online function never diverge
		panic(fmt.Sprintf("tick: could not sync target: %v", err))
	}
}

// Updates returns the number of calls to Reinforce that reached the
// optimizer, including those skipped due to non-finite gradients
func (a *Approximation) Updates() int {
	return a.updates
}

// Episodes returns the number of calls to EndEpisode
func (a *Approximation) Episodes() int {
	return a.episodes
}

// Name returns the name of the Approximation
func (a *Approximation) Name() string {
	return a.name
}

// Function returns the online function
func (a *Approximation) Function() network.Function {
	return a.fn
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func gradsFinite(grads []*mat.Dense) bool {
	for _, g := range grads {
		r, c := g.Dims()
		for i := 0; i < r; i++ {
			for _, v := range g.RawRowView(i)[:c] {
				if !isFinite(v) {
					return false
				}
			}
		}
	}
	return true
}

// clipNorm scales grads so that their global L2 norm is at most max
func clipNorm(grads []*mat.Dense, max float64) {
	norm := GradNorm(grads)
	if norm <= max {
		return
	}
	for _, g := range grads {
		g.Scale(max/norm, g)
	}
}

// GradNorm returns the global L2 norm of a set of gradients. The norm
// of each matrix is its Frobenius norm.
func GradNorm(grads []*mat.Dense) float64 {
	norms := make([]float64, len(grads))
	for i, g := range grads {
		norms[i] = mat.Norm(g, 2)
	}
	return floats.Norm(norms, 2)
}
