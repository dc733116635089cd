package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig describes a configuration of the Adam solver
type AdamConfig struct {
	StepSize float64 `yaml:"step_size"`
	Epsilon  float64 `yaml:"epsilon"` // Smoothing factor
	Beta1    float64 `yaml:"beta1"`
	Beta2    float64 `yaml:"beta2"`
	Batch    int     `yaml:"batch"`
}

// NewDefaultAdam returns a new Adam Solver with default hyperparameters
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	return NewAdam(stepSize, 1e-8, 0.9, 0.999, batchSize)
}

// NewAdam returns a new Adam Solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64, batchSize int) (*Solver,
	error) {
	adam := AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	}

	return newSolver(adam)
}

// Create returns a new Gorgonia Adam Solver as described by the
// AdamConfig
func (a AdamConfig) Create() G.Solver {
	solver := G.NewAdamSolver(
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	)
	return solver
}

// Type returns the type of solver described by the config
func (a AdamConfig) Type() Type {
	return Adam
}

// LearningRate returns the step size
func (a AdamConfig) LearningRate() float64 {
	return a.StepSize
}

// Validate checks the hyperparameters of the config
func (a AdamConfig) Validate() error {
	if err := checkStepSize(a.StepSize); err != nil {
		return fmt.Errorf("adam: %v", err)
	}
	if err := checkBatch(a.Batch); err != nil {
		return fmt.Errorf("adam: %v", err)
	}
	if a.Epsilon <= 0 {
		return fmt.Errorf("adam: epsilon must be positive\n\thave(%v)",
			a.Epsilon)
	}
	if a.Beta1 < 0 || a.Beta1 >= 1 || a.Beta2 < 0 || a.Beta2 >= 1 {
		return fmt.Errorf("adam: betas must be in [0, 1)\n\thave(%v, %v)",
			a.Beta1, a.Beta2)
	}
	return nil
}

func (a *AdamConfig) setDefaults() {
	a.Epsilon = 1e-8
	a.Beta1 = 0.9
	a.Beta2 = 0.999
	a.Batch = 1
}
