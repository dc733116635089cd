// Package schedule implements schedules of hyperparameters over time
package schedule

import "fmt"

// Schedule returns the value of a hyperparameter at time step t
type Schedule interface {
	Value(t int) float64
}

// Constant is a Schedule that never changes
type Constant float64

// Value returns the constant
func (c Constant) Value(int) float64 {
	return float64(c)
}

// Linear anneals linearly from Start to End over Steps time steps and
// remains at End afterwards
type Linear struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Steps int     `yaml:"steps"`
}

// Value returns the value of the schedule at time step t
func (l Linear) Value(t int) float64 {
	if l.Steps <= 0 || t >= l.Steps {
		return l.End
	}
	if t <= 0 {
		return l.Start
	}
	frac := float64(t) / float64(l.Steps)
	return l.Start + frac*(l.End-l.Start)
}

// ValidateIn returns an error if the schedule leaves [low, high]
func (l Linear) ValidateIn(low, high float64) error {
	if l.Steps < 0 {
		return fmt.Errorf("schedule steps must be non-negative\n\thave(%v)",
			l.Steps)
	}
	for _, v := range []float64{l.Start, l.End} {
		if v < low || v > high {
			return fmt.Errorf("schedule value %v outside of [%v, %v]", v, low,
				high)
		}
	}
	return nil
}
