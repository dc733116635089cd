package vsarsa

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/agent/schedule"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/writer"
	"gopkg.in/yaml.v3"
)

// Type is the preset type of VSarsa agents
const Type preset.Type = "vsarsa"

func init() {
	preset.Register(Type, Decode)
}

// Config implements a configuration for a VSarsa agent
type Config struct {
	preset.Network `yaml:",inline"`

	Solver  *solver.Solver  `yaml:"solver"`
	Epsilon schedule.Linear `yaml:"epsilon"`

	ClipGrad           float64 `yaml:"clip_grad"`
	CheckpointInterval int     `yaml:"checkpoint_interval"`

	Seed uint64 `yaml:"seed"`
}

// Validate checks a Config to ensure it is a valid configuration of a
// VSarsa agent.
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

type vsarsaPreset struct {
	config Config
	opts   preset.Options
}

// Configure captures the hyperparameters of VSarsa agents
func Configure(c Config, opts ...preset.Option) preset.Preset {
	return &vsarsaPreset{config: c, opts: preset.NewOptions(string(Type),
		opts...)}
}

// Decode decodes a Preset from a YAML configuration
func Decode(node *yaml.Node, opts ...preset.Option) (preset.Preset, error) {
	c := Config{Epsilon: schedule.Linear{Start: 0.1, End: 0.1}}
	if err := node.Decode(&c); err != nil {
		return nil, err
	}
	return Configure(c, opts...), nil
}

func (p *vsarsaPreset) Name() string {
	return p.opts.Name
}

func (p *vsarsaPreset) Validate() error {
	return p.config.Validate()
}

func (p *vsarsaPreset) Instantiate(env environment.Environment,
	w writer.Writer) (agent.Agent, error) {
	a, err := New(env, p.config, w, p.opts)
	if err != nil {
		return nil, err
	}
	return a, nil
}
