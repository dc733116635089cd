// Package experiment implements the control loop which pairs agents
// with environments and steps them under a frame or episode budget.
//
// A Run executes one agent on one environment. An Experiment executes
// the cartesian product of a list of presets and a list of
// environments sequentially, and Jobs are self-contained descriptions
// of runs which can be executed in parallel.
//
// Each run writes to <dir>/<agent>/<environment>/, where every
// WindowSize completed episodes a row is appended to ReturnsFile.
package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/preset"
	"go.uber.org/zap"
)

// Experiment runs every preset on every environment
type Experiment struct {
	presets []preset.Preset
	envs    []environment.Environment
	budget  Budget
	opts    Options
}

// New returns a new Experiment
func New(presets []preset.Preset, envs []environment.Environment,
	budget Budget, opts Options) *Experiment {
	return &Experiment{
		presets: presets,
		envs:    envs,
		budget:  budget,
		opts:    opts.withDefaults(),
	}
}

// Names returns the names runs of each preset are written under. Presets
// which share a name are numbered in order, starting from the second.
func (e *Experiment) Names() []string {
	names := make([]string, len(e.presets))
	seen := make(map[string]int, len(e.presets))
	for i, p := range e.presets {
		name := p.Name()
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%v_%v", name, n)
		}
		names[i] = name
	}
	return names
}

// Run executes all runs of the Experiment in order, presets in the
// outer loop. A run which fails does not stop the following runs, and
// the errors of all failed runs are returned together. Cancelling ctx
// stops the current run and skips those not yet started.
func (e *Experiment) Run(ctx context.Context) ([]Result, error) {
	if err := e.budget.Validate(); err != nil {
		return nil, fmt.Errorf("run: %v", err)
	}

	var (
		results []Result
		errs    []error
	)
	names := e.Names()
	for i, p := range e.presets {
		for _, env := range e.envs {
			if err := ctx.Err(); err != nil {
				return results, errors.Join(append(errs, err)...)
			}

			run := newRun(p, names[i], env, e.budget, e.opts)
			result, err := run.Execute(ctx)
			results = append(results, result)
			if err != nil {
				e.opts.Logger.Error("run failed", zap.String("agent", names[i]),
					zap.String("environment", env.Name()), zap.Error(err))
				errs = append(errs, fmt.Errorf("%v on %v: %w", names[i],
					env.Name(), err))
			}
		}
	}
	return results, errors.Join(errs...)
}
