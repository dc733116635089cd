package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samuelfneumann/autolearn/environment/envconfig"
	"github.com/samuelfneumann/autolearn/preset"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is a self-contained description of a single run. Jobs share no
// mutable state, so any number of them may execute concurrently.
type Job struct {
	ID     uuid.UUID
	Preset preset.Preset
	Env    envconfig.Config
	Seed   uint64
	Budget Budget

	// Dir is the root directory the job's run writes to
	Dir string

	// Restore, if set, is the root directory of the earlier experiment
	// the job's agent restores its checkpoints from
	Restore string
}

// NewJob returns a new Job with a random ID
func NewJob(p preset.Preset, env envconfig.Config, seed uint64,
	budget Budget, dir string) Job {
	return Job{
		ID:     uuid.New(),
		Preset: p,
		Env:    env,
		Seed:   seed,
		Budget: budget,
		Dir:    dir,
	}
}

// Execute creates the job's environment and runs the job's preset on
// it. The Dir and Restore of opts are replaced by those of the Job
// when set.
func (j Job) Execute(ctx context.Context, opts Options) (Result, error) {
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.With(zap.Stringer("job", j.ID))
	if j.Dir != "" {
		opts.Dir = j.Dir
	}
	if j.Restore != "" {
		opts.Restore = j.Restore
	}

	env, err := j.Env.Create(j.Seed)
	if err != nil {
		return Result{Agent: j.Preset.Name(), Environment: string(j.Env.Environment),
			State: Init}, fmt.Errorf("execute: %w", err)
	}
	return NewRun(j.Preset, env, j.Budget, opts).Execute(ctx)
}

// RunJobs executes jobs with at most parallelism running at once, or
// all at once if parallelism is not positive. A failed job does not
// affect the others. Results are returned in the order of jobs, along
// with the errors of all failed jobs.
func RunJobs(ctx context.Context, jobs []Job, parallelism int,
	opts Options) ([]Result, error) {
	results := make([]Result, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			result, err := job.Execute(ctx, opts)
			results[i] = result
			if err != nil {
				errs[i] = fmt.Errorf("job %v: %w", job.ID, err)
			}
			return nil
		})
	}
	g.Wait()

	return results, errors.Join(errs...)
}
