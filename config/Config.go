// Package config implements experiment configuration files.
//
// Values are resolved in order: defaults, then the YAML file, then
// environment variables prefixed with EnvPrefix, e.g.
// AUTOLEARN_BUDGET_FRAMES=5000 or AUTOLEARN_OPTIONS_QUIET=true.
// Agents and environments can only be given in the file.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/samuelfneumann/autolearn/agent/body"
	"github.com/samuelfneumann/autolearn/environment/envconfig"
	"github.com/samuelfneumann/autolearn/experiment"
	"github.com/samuelfneumann/autolearn/preset"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables which override
// configuration values
const EnvPrefix = "AUTOLEARN"

// Config describes an experiment
type Config struct {
	// Dir is the root directory of run output
	Dir string `yaml:"dir" env:"DIR"`

	// Seed is the seed of the first run of each agent and environment
	// pair. Repeated runs use consecutive environment seeds, and their
	// agents are built with consecutive seed offsets.
	Seed uint64 `yaml:"seed" env:"SEED"`
	Runs int    `yaml:"runs" env:"RUNS"`

	// Parallelism bounds the number of runs executing at once
	Parallelism int `yaml:"parallelism" env:"PARALLELISM"`

	Budget  Budget  `yaml:"budget" env:"BUDGET"`
	Options Options `yaml:"options" env:"OPTIONS"`
	Log     Log     `yaml:"log" env:"LOG"`
	Metrics Metrics `yaml:"metrics" env:"METRICS"`

	Environments []envconfig.Config `yaml:"environments"`
	Agents       []Agent            `yaml:"agents"`
}

// Budget mirrors experiment.Budget
type Budget struct {
	Frames   int `yaml:"frames" env:"FRAMES"`
	Episodes int `yaml:"episodes" env:"EPISODES"`
}

// Options mirrors the presentation options of experiment.Options
type Options struct {
	Render    bool `yaml:"render" env:"RENDER"`
	Quiet     bool `yaml:"quiet" env:"QUIET"`
	WriteLoss bool `yaml:"write_loss" env:"WRITE_LOSS"`

	// Eval runs agents greedily without learning
	Eval bool `yaml:"eval" env:"EVAL"`

	// Restore is the Dir of an earlier experiment to restore agents'
	// checkpoints from
	Restore string `yaml:"restore" env:"RESTORE"`
}

// Log configures the logger
type Log struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`

	// Format is one of json or console
	Format string `yaml:"format" env:"FORMAT"`
}

// Metrics configures the Prometheus endpoint. Metrics are only served
// if Addr is set.
type Metrics struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Agent describes one preset. The hyperparameters in Config are
// decoded by the Decoder registered for Type.
type Agent struct {
	Type preset.Type `yaml:"type"`

	// Name overrides the name runs of the agent are written under
	Name string `yaml:"name"`

	// FrameStack stacks the last FrameStack observations if positive
	FrameStack int `yaml:"frame_stack"`

	Config yaml.Node `yaml:"config"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Dir:         experiment.DefaultDir,
		Seed:        0,
		Runs:        1,
		Parallelism: 1,
		Log:         Log{Level: "info", Format: "console"},
		Metrics:     Metrics{Namespace: "autolearn"},
	}
}

// Validate checks the configuration without decoding its agents
func (c *Config) Validate() error {
	if err := c.budget().Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.Runs < 1 {
		return fmt.Errorf("validate: runs must be positive\n\thave(%v)",
			c.Runs)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("validate: parallelism must be positive"+
			"\n\thave(%v)", c.Parallelism)
	}
	if len(c.Environments) == 0 {
		return fmt.Errorf("validate: no environments")
	}
	for _, env := range c.Environments {
		if err := env.Validate(); err != nil {
			return fmt.Errorf("validate: %v", err)
		}
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("validate: no agents")
	}

	names := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if a.Type == "" {
			return fmt.Errorf("validate: agent %v has no type", i)
		}
		if a.FrameStack < 0 {
			return fmt.Errorf("validate: agent %v: frame_stack must be "+
				"non-negative\n\thave(%v)", i, a.FrameStack)
		}
		name := a.name()
		if names[name] {
			return fmt.Errorf("validate: duplicate agent name %q", name)
		}
		names[name] = true
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("validate: unknown log format %q", c.Log.Format)
	}
	return nil
}

func (a Agent) name() string {
	if a.Name != "" {
		return a.Name
	}
	return string(a.Type)
}

func (c *Config) budget() experiment.Budget {
	return experiment.Budget{
		Frames:   c.Budget.Frames,
		Episodes: c.Budget.Episodes,
	}
}

// Presets decodes the presets of all agents and validates their
// hyperparameters. Agents log with logger, and opts are applied to
// every preset.
func (c *Config) Presets(logger *zap.Logger,
	opts ...preset.Option) ([]preset.Preset, error) {
	presets := make([]preset.Preset, 0, len(c.Agents))
	for _, a := range c.Agents {
		node := &a.Config
		if node.Kind == 0 {
			node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}

		o := append([]preset.Option{preset.WithName(a.name()),
			preset.WithLogger(logger)}, opts...)
		p, err := preset.Decode(a.Type, node, o...)
		if err != nil {
			return nil, fmt.Errorf("presets: agent %q: %w", a.name(), err)
		}
		if a.FrameStack > 0 {
			p = body.FrameStack(p, a.FrameStack)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("presets: agent %q: %w", a.name(), err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// Jobs returns one Job per run of each agent on each environment. Run
// r of a pair uses environment seed Seed+r and agents built with seed
// offset r, so that repeated runs are independent. With more than one
// run per pair, each seed writes to its own subdirectory of Dir.
func (c *Config) Jobs(logger *zap.Logger) ([]experiment.Job, error) {
	runs := make([][]preset.Preset, c.Runs)
	for r := range runs {
		presets, err := c.Presets(logger, preset.WithSeedOffset(uint64(r)))
		if err != nil {
			return nil, fmt.Errorf("jobs: %w", err)
		}
		runs[r] = presets
	}

	var jobs []experiment.Job
	for i := range c.Agents {
		for _, env := range c.Environments {
			for r := 0; r < c.Runs; r++ {
				seed := c.Seed + uint64(r)
				dir, restore := c.Dir, c.Options.Restore
				if c.Runs > 1 {
					sub := fmt.Sprintf("seed_%d", seed)
					dir = filepath.Join(dir, sub)
					if restore != "" {
						restore = filepath.Join(restore, sub)
					}
				}
				j := experiment.NewJob(runs[r][i], env, seed, c.budget(), dir)
				j.Restore = restore
				jobs = append(jobs, j)
			}
		}
	}
	return jobs, nil
}

// ExperimentOptions returns the experiment.Options described by the
// configuration
func (c *Config) ExperimentOptions(logger *zap.Logger) experiment.Options {
	return experiment.Options{
		Render:    c.Options.Render,
		Quiet:     c.Options.Quiet,
		WriteLoss: c.Options.WriteLoss,
		Eval:      c.Options.Eval,
		Restore:   c.Options.Restore,
		Dir:       c.Dir,
		Logger:    logger,
	}
}

// Logger builds the logger described by the configuration
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %v", err)
	}

	var zc zap.Config
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
