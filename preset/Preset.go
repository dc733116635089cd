// Package preset implements two-stage agent factories. A Preset
// captures the hyperparameters of an algorithm when it is configured
// and builds a fresh agent for a specific environment each time it is
// instantiated. No state is shared between agents instantiated from the
// same Preset.
package preset

import (
	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/writer"
	"go.uber.org/zap"
)

// Preset builds agents for environments
type Preset interface {
	// Name returns the name of the agents the Preset builds
	Name() string

	// Validate checks the captured hyperparameters without building
	// anything. Instantiate performs the same checks, along with checks
	// that depend on the environment.
	Validate() error

	// Instantiate builds a new agent for env that logs to w. If the
	// hyperparameters are out of their domain or are incompatible with
	// the environment, a *ConfigurationError is returned along with a
	// nil Agent.
	Instantiate(env environment.Environment, w writer.Writer) (agent.Agent,
		error)
}

// Options holds settings that apply to any Preset
type Options struct {
	Name   string
	Logger *zap.Logger

	// SeedOffset distinguishes repeated runs of the same Preset
	SeedOffset uint64
}

// RunSeedStride separates the seeds of agents built with consecutive
// seed offsets, so that an agent's derived seeds (base+1, base+2, ...)
// never collide with those of another run
const RunSeedStride uint64 = 1 << 16

// Seed returns the seed an agent should use in place of base
func (o Options) Seed(base uint64) uint64 {
	return base + o.SeedOffset*RunSeedStride
}

// Option sets an Option of a Preset
type Option func(*Options)

// WithLogger sets the logger of the agents the Preset builds
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithName overrides the name of the agents the Preset builds
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithSeedOffset offsets the seeds of the agents the Preset builds,
// giving each of several runs of one configuration its own random
// streams
func WithSeedOffset(offset uint64) Option {
	return func(o *Options) {
		o.SeedOffset = offset
	}
}

// NewOptions applies opts on top of the defaults. The name defaults to
// name and the logger to a no-op logger.
func NewOptions(name string, opts ...Option) Options {
	o := Options{Name: name, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
