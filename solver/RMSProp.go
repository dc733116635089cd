package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// RMSPropConfig implements a specific configuration of the RMSProp
// solver
type RMSPropConfig struct {
	StepSize float64 `yaml:"step_size"`
	Epsilon  float64 `yaml:"epsilon"`
	Rho      float64 `yaml:"rho"`
	Batch    int     `yaml:"batch"`
}

// NewDefaultRMSProp returns a new RMSProp Solver with default
// hyperparameters
func NewDefaultRMSProp(stepSize float64, batchSize int) (*Solver, error) {
	return NewRMSProp(stepSize, 1e-8, 0.999, batchSize)
}

// NewRMSProp returns a new RMSProp Solver
func NewRMSProp(stepSize, epsilon, rho float64, batchSize int) (*Solver,
	error) {
	rmsprop := RMSPropConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Rho:      rho,
		Batch:    batchSize,
	}

	return newSolver(rmsprop)
}

// Create returns a new Gorgonia RMSProp Solver as described by the
// RMSPropConfig
func (r RMSPropConfig) Create() G.Solver {
	return G.NewRMSPropSolver(
		G.WithLearnRate(r.StepSize),
		G.WithEps(r.Epsilon),
		G.WithRho(r.Rho),
		G.WithBatchSize(float64(r.Batch)),
	)
}

// Type returns the type of solver described by the config
func (r RMSPropConfig) Type() Type {
	return RMSProp
}

// LearningRate returns the step size
func (r RMSPropConfig) LearningRate() float64 {
	return r.StepSize
}

// Validate checks the hyperparameters of the config
func (r RMSPropConfig) Validate() error {
	if err := checkStepSize(r.StepSize); err != nil {
		return fmt.Errorf("rmsprop: %v", err)
	}
	if err := checkBatch(r.Batch); err != nil {
		return fmt.Errorf("rmsprop: %v", err)
	}
	if r.Rho <= 0 || r.Rho >= 1 {
		return fmt.Errorf("rmsprop: rho must be in (0, 1)\n\thave(%v)",
			r.Rho)
	}
	return nil
}

func (r *RMSPropConfig) setDefaults() {
	r.Epsilon = 1e-8
	r.Rho = 0.999
	r.Batch = 1
}
