package dqn

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/agent/schedule"
	"github.com/samuelfneumann/autolearn/approximation"
	"github.com/samuelfneumann/autolearn/buffer/expreplay"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/writer"
	"gopkg.in/yaml.v3"
)

// Type is the preset type of DQN agents
const Type preset.Type = "dqn"

func init() {
	preset.Register(Type, Decode)
}

// LossType determines the loss used to regress action values towards
// their update targets
type LossType string

const (
	MSE   LossType = "mse"
	Huber LossType = "huber"
)

// Config implements a configuration for a DQN agent
type Config struct {
	preset.Network `yaml:",inline"`

	Solver *solver.Solver `yaml:"solver"` // Solver for learning weights

	// Behaviour policy epsilon, annealed over agent steps
	Epsilon schedule.Linear `yaml:"epsilon"`

	// Experience replay parameters
	ExpReplay expreplay.Config `yaml:"replay"`

	// Target net updates
	Target approximation.Sync `yaml:"target"`

	Loss       LossType `yaml:"loss"`
	HuberDelta float64  `yaml:"huber_delta"`

	// Number of agent steps between gradient steps
	UpdateInterval int `yaml:"update_interval"`

	ClipGrad           float64 `yaml:"clip_grad"`
	CheckpointInterval int     `yaml:"checkpoint_interval"`

	Seed uint64 `yaml:"seed"`
}

// Validate checks a Config to ensure it is a valid configuration of a
// DQN agent.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return preset.Invalid(string(Type), "network", err)
	}
	if c.Solver == nil || c.Solver.Config == nil {
		return preset.Invalid(string(Type), "solver",
			fmt.Errorf("missing solver"))
	}
	if err := c.Solver.Config.Validate(); err != nil {
		return preset.Invalid(string(Type), "solver", err)
	}
	if err := c.Epsilon.ValidateIn(0, 1); err != nil {
		return preset.Invalid(string(Type), "epsilon", err)
	}
	if err := c.ExpReplay.Validate(); err != nil {
		return preset.Invalid(string(Type), "replay", err)
	}
	if err := c.Target.Validate(); err != nil {
		return preset.Invalid(string(Type), "target", err)
	}
	switch c.Loss {
	case "", MSE:
	case Huber:
		if c.HuberDelta <= 0 {
			return preset.Invalid(string(Type), "huber_delta",
				fmt.Errorf("must be positive\n\thave(%v)", c.HuberDelta))
		}
	default:
		return preset.Invalid(string(Type), "loss",
			fmt.Errorf("unknown loss %q", c.Loss))
	}
	if c.UpdateInterval < 0 {
		return preset.Invalid(string(Type), "update_interval",
			fmt.Errorf("must be non-negative\n\thave(%v)", c.UpdateInterval))
	}
	if c.ClipGrad < 0 {
		return preset.Invalid(string(Type), "clip_grad",
			fmt.Errorf("must be non-negative\n\thave(%v)", c.ClipGrad))
	}
	if c.CheckpointInterval < 0 {
		return preset.Invalid(string(Type), "checkpoint_interval",
			fmt.Errorf("must be non-negative\n\thave(%v)",
				c.CheckpointInterval))
	}
	return nil
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// dqnPreset captures a Config so that DQN agents can be instantiated
// for many environments
type dqnPreset struct {
	config Config
	opts   preset.Options
}

// Configure captures the hyperparameters of DQN agents. Nothing is
// validated or built until the returned Preset is instantiated.
func Configure(c Config, opts ...preset.Option) preset.Preset {
	return &dqnPreset{config: c, opts: preset.NewOptions(string(Type),
		opts...)}
}

// Decode decodes a Preset from a YAML configuration
func Decode(node *yaml.Node, opts ...preset.Option) (preset.Preset, error) {
	c := Config{
		Loss:           MSE,
		UpdateInterval: 1,
		ExpReplay: expreplay.Config{
			SampleMethod:      expreplay.Uniform,
			SampleSize:        32,
			MinReplayCapacity: 32,
			MaxReplayCapacity: 10000,
		},
	}
	if err := node.Decode(&c); err != nil {
		return nil, err
	}
	return Configure(c, opts...), nil
}

// Name returns the name of the agents the Preset builds
func (p *dqnPreset) Name() string {
	return p.opts.Name
}

// Validate checks the captured hyperparameters
func (p *dqnPreset) Validate() error {
	return p.config.Validate()
}

// Instantiate creates a new DQN agent for the environment
func (p *dqnPreset) Instantiate(env environment.Environment,
	w writer.Writer) (agent.Agent, error) {
	a, err := New(env, p.config, w, p.opts)
	if err != nil {
		return nil, err
	}
	return a, nil
}
