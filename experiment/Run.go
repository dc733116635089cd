package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/experiment/tracker"
	"github.com/samuelfneumann/autolearn/preset"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"go.uber.org/zap"
)

// State is a state of the control loop of a Run
type State string

const (
	Init     State = "INIT"
	Stepping State = "STEPPING"
	Terminal State = "TERMINAL"
	Reset    State = "RESET"
	Done     State = "DONE"
)

// DefaultDir is the directory runs write to when none is given
const DefaultDir = "runs"

// Budget bounds the length of a run. Exactly one of Frames and
// Episodes must be positive.
type Budget struct {
	Frames   int `yaml:"frames"`
	Episodes int `yaml:"episodes"`
}

// Frames returns a Budget of n environment steps
func Frames(n int) Budget {
	return Budget{Frames: n}
}

// Episodes returns a Budget of n completed episodes
func Episodes(n int) Budget {
	return Budget{Episodes: n}
}

// Validate checks that exactly one limit of the Budget is positive
func (b Budget) Validate() error {
	if b.Frames < 0 || b.Episodes < 0 {
		return fmt.Errorf("budget must be non-negative\n\thave(frames=%v, "+
			"episodes=%v)", b.Frames, b.Episodes)
	}
	if (b.Frames > 0) == (b.Episodes > 0) {
		return fmt.Errorf("exactly one of frames and episodes must be set"+
			"\n\thave(frames=%v, episodes=%v)", b.Frames, b.Episodes)
	}
	return nil
}

func (b Budget) exhausted(frames, episodes int) bool {
	if b.Frames > 0 {
		return frames >= b.Frames
	}
	return episodes >= b.Episodes
}

// WriterFactory creates the Writer of a run. The run argument names
// the run as "<agent>/<environment>" and dir is the run's directory.
type WriterFactory func(run, dir string) (writer.Writer, error)

// FileWriter is the default WriterFactory, writing scalars to a CSV
// file in the run directory
func FileWriter(_, dir string) (writer.Writer, error) {
	return writer.NewFile(dir)
}

// Options configures the presentation and output of runs
type Options struct {
	// Render renders each step of environments which can be rendered
	Render bool

	// Quiet silences per-episode logging
	Quiet bool

	// WriteLoss forwards the losses of the agents' approximations to
	// the Writer
	WriteLoss bool

	// Eval runs agents in evaluation mode, following their greedy
	// policies without learning. Agents that are not an
	// agent.Evaluator cannot be run in evaluation mode.
	Eval bool

	// Restore, if set, is the root directory of an earlier experiment
	// whose checkpoints agents restore from before the run starts.
	// Agents that are not an agent.Restorer cannot be restored.
	Restore string

	// Dir is the root directory of run output, DefaultDir if empty
	Dir string

	Logger    *zap.Logger
	NewWriter WriterFactory

	// Trackers creates additional Trackers for each run, observing the
	// run's TimeSteps alongside the episode tracker
	Trackers []TrackerFactory
}

// TrackerFactory creates a Tracker for a run that reports to w
type TrackerFactory func(w writer.Writer) (tracker.Tracker, error)

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.NewWriter == nil {
		o.NewWriter = FileWriter
	}
	return o
}

// Result summarises a run
type Result struct {
	Agent       string
	Environment string
	State       State
	Frames      int
	Episodes    int

	// Mean and StdDev are the mean and population standard deviation
	// of the returns of the last WindowSize episodes
	Mean   float64
	StdDev float64
}

// Run pairs one agent with one environment and steps them until the
// run's budget is exhausted. A Run is single threaded: calls to the
// agent and the environment strictly alternate.
type Run struct {
	preset preset.Preset
	env    environment.Environment
	budget Budget
	opts   Options
	name   string
	logger *zap.Logger

	state    State
	frames   int
	episodes int
	window   *Window
}

// NewRun returns a new Run of agents created by p on env
func NewRun(p preset.Preset, env environment.Environment, budget Budget,
	opts Options) *Run {
	return newRun(p, p.Name(), env, budget, opts)
}

func newRun(p preset.Preset, name string, env environment.Environment,
	budget Budget, opts Options) *Run {
	opts = opts.withDefaults()
	return &Run{
		preset: p,
		env:    env,
		budget: budget,
		opts:   opts,
		name:   name,
		logger: opts.Logger.With(zap.String("component", "experiment"),
			zap.String("agent", name), zap.String("environment", env.Name())),
		state:  Init,
		window: NewWindow(WindowSize),
	}
}

// Dir returns the directory the run writes to
func (r *Run) Dir() string {
	return filepath.Join(r.opts.Dir, r.name, r.env.Name())
}

// ReturnsPath returns the path of the run's returns file
func (r *Run) ReturnsPath() string {
	return filepath.Join(r.Dir(), ReturnsFile)
}

// State returns the current state of the control loop
func (r *Run) State() State {
	return r.state
}

// Frames returns the number of environment steps taken so far
func (r *Run) Frames() int {
	return r.frames
}

// Episodes returns the number of episodes completed so far
func (r *Run) Episodes() int {
	return r.episodes
}

// Result returns a summary of the run so far
func (r *Run) Result() Result {
	mean, std := r.window.MeanStdDev()
	return Result{
		Agent:       r.name,
		Environment: r.env.Name(),
		State:       r.state,
		Frames:      r.frames,
		Episodes:    r.episodes,
		Mean:        mean,
		StdDev:      std,
	}
}

// Execute runs the control loop to completion. Invalid hyperparameters
// are reported as a *preset.ConfigurationError before any step is
// taken, and environment faults end the run with an error. If ctx is
// cancelled the run stops before its next call to the agent or the
// environment and returns the context's error.
//
// A Run can only be executed once.
func (r *Run) Execute(ctx context.Context) (Result, error) {
	if r.state != Init {
		return r.Result(), fmt.Errorf("execute: run already executed")
	}
	if err := r.budget.Validate(); err != nil {
		return r.Result(), fmt.Errorf("execute: %v", err)
	}

	w, err := r.opts.NewWriter(r.name+"/"+r.env.Name(), r.Dir())
	if err != nil {
		return r.Result(), fmt.Errorf("execute: could not create writer: %w",
			err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			r.logger.Warn("could not close writer", zap.Error(err))
		}
	}()
	if !r.opts.WriteLoss {
		w = writer.WithoutPrefix(w, "loss/")
	}

	a, err := r.preset.Instantiate(r.env, w)
	if err != nil {
		return r.Result(), fmt.Errorf("execute: %w", err)
	}
	if closer, ok := a.(agent.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				r.logger.Warn("could not close agent", zap.Error(err))
			}
		}()
	}

	if r.opts.Restore != "" {
		rs, ok := a.(agent.Restorer)
		if !ok {
			return r.Result(), fmt.Errorf("execute: %w", preset.Invalid(
				r.name, "restore", fmt.Errorf("agent cannot be restored")))
		}
		dir := filepath.Join(r.opts.Restore, r.name, r.env.Name())
		if err := rs.Restore(dir); err != nil {
			return r.Result(), fmt.Errorf("execute: %w", err)
		}
	}
	if r.opts.Eval {
		e, ok := a.(agent.Evaluator)
		if !ok {
			return r.Result(), fmt.Errorf("execute: %w", preset.Invalid(
				r.name, "eval", fmt.Errorf("agent cannot be evaluated")))
		}
		e.Eval()
	}

	trackers := []tracker.Tracker{tracker.NewEpisode(w)}
	for _, newTracker := range r.opts.Trackers {
		t, err := newTracker(w)
		if err != nil {
			return r.Result(), fmt.Errorf("execute: could not create "+
				"tracker: %w", err)
		}
		trackers = append(trackers, t)
	}

	r.logger.Info("run started", zap.Int("frames", r.budget.Frames),
		zap.Int("episodes", r.budget.Episodes), zap.Bool("eval", r.opts.Eval))
	err = r.loop(ctx, a, tracker.NewMulti(trackers...))
	result := r.Result()
	if err != nil {
		r.logger.Error("run stopped", zap.Error(err),
			zap.String("state", string(r.state)))
		return result, err
	}
	r.logger.Info("run finished", zap.Int("frames", result.Frames),
		zap.Int("episodes", result.Episodes),
		zap.Float64("mean_return_last_100", result.Mean),
		zap.Float64("std_return_last_100", result.StdDev))
	return result, nil
}

func (r *Run) loop(ctx context.Context, a agent.Agent,
	t tracker.Tracker) error {
	defer func() {
		if err := t.Close(); err != nil {
			r.logger.Warn("could not close tracker", zap.Error(err))
		}
	}()

	var (
		step   ts.TimeStep
		reward float64
		ret    float64
		err    error
	)

	for {
		switch r.state {
		case Init:
			r.frames, r.episodes = 0, 0
			if step, err = r.reset(t); err != nil {
				return err
			}
			reward, ret = 0, 0
			r.state = Stepping

		case Stepping:
			if r.budget.exhausted(r.frames, r.episodes) {
				r.state = Done
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			action, err := a.Act(step, reward)
			if err != nil {
				return fmt.Errorf("act: %w", err)
			}
			var last bool
			step, last, err = r.env.Step(action)
			if err != nil {
				return fmt.Errorf("environment step: %w", err)
			}
			if last {
				// The environment's done flag ends the episode
				// regardless of the step type it reported
				step.StepType = ts.Last
			}
			r.frames++
			reward = step.Reward
			ret += reward
			r.track(t, step)
			r.render()

			if step.Last() {
				r.state = Terminal
			}

		case Terminal:
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := a.Act(step, reward); err != nil {
				return fmt.Errorf("act: %w", err)
			}
			r.window.Add(ret)
			r.episodes++
			if !r.opts.Quiet {
				r.logger.Info("episode completed",
					zap.Int("episode", r.episodes), zap.Float64("return", ret),
					zap.Int("length", step.Number), zap.Int("frames", r.frames))
			}
			if r.episodes%WindowSize == 0 {
				r.recordReturns()
			}
			r.state = Reset

		case Reset:
			if r.budget.exhausted(r.frames, r.episodes) {
				r.state = Done
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if step, err = r.reset(t); err != nil {
				return err
			}
			reward, ret = 0, 0
			r.state = Stepping

		case Done:
			return nil
		}
	}
}

func (r *Run) reset(t tracker.Tracker) (ts.TimeStep, error) {
	step, err := r.env.Reset()
	if err != nil {
		return step, fmt.Errorf("environment reset: %w", err)
	}
	r.track(t, step)
	r.render()
	return step, nil
}

// recordReturns appends the statistics of the window to the returns
// file. Failures are logged and the run continues.
func (r *Run) recordReturns() {
	mean, std := r.window.MeanStdDev()
	row := ReturnsRow{Episode: r.episodes, Mean: mean, StdDev: std}
	if err := appendReturns(r.ReturnsPath(), row); err != nil {
		r.logger.Warn("could not record returns", zap.Error(err),
			zap.String("path", r.ReturnsPath()))
	}
}

func (r *Run) track(t tracker.Tracker, step ts.TimeStep) {
	if err := t.Track(step); err != nil {
		r.logger.Warn("could not track step", zap.Error(err))
	}
}

func (r *Run) render() {
	if !r.opts.Render {
		return
	}
	renderer, ok := r.env.(environment.Renderer)
	if !ok {
		return
	}
	if err := renderer.Render(); err != nil {
		r.logger.Warn("could not render", zap.Error(err))
	}
}

// IsCancelled returns whether err reports a run stopped by
// cancellation of its context
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
