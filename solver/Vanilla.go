package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// VanillaConfig describes a configuration of the vanilla gradient
// descent solver.
type VanillaConfig struct {
	StepSize float64 `yaml:"step_size"`
	Batch    int     `yaml:"batch"`
}

// NewVanilla returns a new Vanilla Solver
func NewVanilla(stepSize float64, batchSize int) (*Solver, error) {
	vanilla := VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
	}

	return newSolver(vanilla)
}

// Create returns a Gorgonia Vanilla Solver as described by the
// VanillaConfig
func (v VanillaConfig) Create() G.Solver {
	return G.NewVanillaSolver(
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	)
}

// Type returns the type of solver described by the config
func (v VanillaConfig) Type() Type {
	return Vanilla
}

// LearningRate returns the step size
func (v VanillaConfig) LearningRate() float64 {
	return v.StepSize
}

// Validate checks the hyperparameters of the config
func (v VanillaConfig) Validate() error {
	if err := checkStepSize(v.StepSize); err != nil {
		return fmt.Errorf("vanilla: %v", err)
	}
	if err := checkBatch(v.Batch); err != nil {
		return fmt.Errorf("vanilla: %v", err)
	}
	return nil
}

func (v *VanillaConfig) setDefaults() {
	v.Batch = 1
}
