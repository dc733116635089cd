package vac

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/solver"
	"github.com/samuelfneumann/autolearn/writer"
	"gopkg.in/yaml.v3"
)

// Type is the preset type of VAC agents
const Type preset.Type = "vac"

func init() {
	preset.Register(Type, Decode)
}

// Config implements a configuration for a VAC agent with a softmax
// policy over discrete actions
type Config struct {
	Policy       preset.Network `yaml:"policy"`
	PolicySolver *solver.Solver `yaml:"policy_solver"`

	Value       preset.Network `yaml:"value"`
	ValueSolver *solver.Solver `yaml:"value_solver"`

	ClipGrad           float64 `yaml:"clip_grad"`
	CheckpointInterval int     `yaml:"checkpoint_interval"`

	Seed uint64 `yaml:"seed"`
}

// Validate checks a Config to ensure it is a valid configuration of a
// VAC agent.
func (c Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return preset.Invalid(string(Type), "policy", err)
	}
	if err := c.Value.Validate(); err != nil {
		return preset.Invalid(string(Type), "value", err)
	}
	for field, s := range map[string]*solver.Solver{
		"policy_solver": c.PolicySolver,
		"value_solver":  c.ValueSolver,
	} {
		if s == nil || s.Config == nil {
			return preset.Invalid(string(Type), field,
				fmt.Errorf("missing solver"))
		}
		if err := s.Config.Validate(); err != nil {
			return preset.Invalid(string(Type), field, err)
		}
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

type vacPreset struct {
	config Config
	opts   preset.Options
}

// Configure captures the hyperparameters of VAC agents
func Configure(c Config, opts ...preset.Option) preset.Preset {
	return &vacPreset{config: c, opts: preset.NewOptions(string(Type),
		opts...)}
}

// Decode decodes a Preset from a YAML configuration
func Decode(node *yaml.Node, opts ...preset.Option) (preset.Preset, error) {
	var c Config
	if err := node.Decode(&c); err != nil {
		return nil, err
	}
	return Configure(c, opts...), nil
}

func (p *vacPreset) Name() string {
	return p.opts.Name
}

func (p *vacPreset) Validate() error {
	return p.config.Validate()
}

func (p *vacPreset) Instantiate(env environment.Environment,
	w writer.Writer) (agent.Agent, error) {
	a, err := New(env, p.config, w, p.opts)
	if err != nil {
		return nil, err
	}
	return a, nil
}
