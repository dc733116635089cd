// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are serializable, so that a job
// description can carry them to wherever the job runs.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/environment/classiccontrol/acrobot"
	"github.com/samuelfneumann/autolearn/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/autolearn/environment/classiccontrol/mountaincar"
	"github.com/samuelfneumann/autolearn/environment/wrappers"
	"gonum.org/v1/gonum/spatial/r1"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole    EnvName = "CartPole"
	MountainCar EnvName = "MountainCar"
	Acrobot     EnvName = "Acrobot"
)

// Config implements a specific configuration of a specific environment
type Config struct {
	Environment   EnvName `yaml:"name" json:"name"`
	EpisodeCutoff int     `yaml:"episode_cutoff" json:"episode_cutoff"`
	Discount      float64 `yaml:"discount" json:"discount"`

	// TileCoding, if set, tile codes the environment's observations
	TileCoding *TileCoding `yaml:"tile_coding,omitempty" json:"tile_coding,omitempty"`
}

// TileCoding configures tile coding of observations with a number of
// tilings, each using the same number of tiles along every dimension
type TileCoding struct {
	Tilings int `yaml:"tilings" json:"tilings"`
	Tiles   int `yaml:"tiles" json:"tiles"`
}

// Bins returns the tilings in the layout used by tilecoder.New for
// observations with dims dimensions
func (t TileCoding) Bins(dims int) [][]int {
	bins := make([][]int, t.Tilings)
	for i := range bins {
		bins[i] = make([]int, dims)
		for j := range bins[i] {
			bins[i][j] = t.Tiles
		}
	}
	return bins
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, episodeCutoff int, discount float64) Config {
	return Config{
		Environment:   envName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// Validate returns an error if the Config cannot create an environment
func (c Config) Validate() error {
	switch c.Environment {
	case Cartpole, MountainCar, Acrobot:
	default:
		return fmt.Errorf("validate: no such environment %q", c.Environment)
	}

	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("validate: episode cutoff must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.EpisodeCutoff)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Discount)
	}
	if tc := c.TileCoding; tc != nil && (tc.Tilings < 1 || tc.Tiles < 1) {
		return fmt.Errorf("validate: tile coding needs at least 1 tiling "+
			"and 1 tile \n\thave(tilings=%v, tiles=%v)", tc.Tilings,
			tc.Tiles)
	}
	return nil
}

// Create returns the environment described by the Config. The seed
// determines the sequence of starting states.
func (c Config) Create(seed uint64) (environment.Environment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}

	var env environment.Environment
	var err error
	switch c.Environment {
	case Cartpole:
		env, err = CreateCartpole(c.EpisodeCutoff, seed, c.Discount)
	case MountainCar:
		env, err = CreateMountainCar(c.EpisodeCutoff, seed, c.Discount)
	case Acrobot:
		env = CreateAcrobot(c.EpisodeCutoff, seed, c.Discount)
	default:
		return nil, fmt.Errorf("create: cannot create environment %v, no "+
			"such environment", c.Environment)
	}
	if err != nil || c.TileCoding == nil {
		return env, err
	}

	bins := c.TileCoding.Bins(env.ObservationSpec().Dims())
	tc, err := wrappers.NewTileCoding(env, bins, seed)
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	return tc, nil
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and the Balance task.
func CreateCartpole(cutoff int, seed uint64,
	discount float64) (environment.Environment, error) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := environment.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	task, err := cartpole.NewBalance(s, cutoff, cartpole.FailAngle)
	if err != nil {
		return nil, fmt.Errorf("createCartpole: %v", err)
	}

	return cartpole.NewDiscrete(task, discount), nil
}

// CreateMountainCar is a factory for creating the Mountain Car
// environment with discrete actions and the Goal task. Episodes start
// at rest in the valley.
func CreateMountainCar(cutoff int, seed uint64,
	discount float64) (environment.Environment, error) {
	s := environment.NewUniformStarter([]r1.Interval{
		{Min: -0.6, Max: -0.4},
		{Min: 0, Max: 0},
	}, seed)

	task, err := mountaincar.NewGoal(s, cutoff, mountaincar.GoalPosition)
	if err != nil {
		return nil, fmt.Errorf("createMountainCar: %v", err)
	}

	return mountaincar.NewDiscrete(task, discount), nil
}

// CreateAcrobot is a factory for creating the Acrobot environment with
// discrete actions and the SwingUp task
func CreateAcrobot(cutoff int, seed uint64,
	discount float64) environment.Environment {
	bounds := r1.Interval{Min: -0.1, Max: 0.1}
	s := environment.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	task := acrobot.NewSwingUp(s, cutoff, acrobot.GoalHeight)
	return acrobot.NewDiscrete(task, discount)
}
