// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. A
// TimeStep is the state an Environment hands to an agent: the
// observation features, whether the state is terminal, and any
// auxiliary information the environment reports.
//
// TimeSteps are treated as immutable once produced by an Environment.
// Consumers that need to keep the observation around beyond the next
// call into the environment should copy it.
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int

	// Info holds auxiliary, environment-specific information. It may
	// be nil.
	Info map[string]interface{}
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment,
// that is whether the state is terminal.
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// Features returns the observation features as a slice. The slice
// aliases the observation's backing data.
func (t TimeStep) Features() []float64 {
	if t.Observation == nil {
		return nil
	}
	return t.Observation.RawVector().Data
}

// WithInfo returns a copy of the TimeStep with the key set to value in
// its Info map. The original Info map is never modified.
func (t TimeStep) WithInfo(key string, value interface{}) TimeStep {
	info := make(map[string]interface{}, len(t.Info)+1)
	for k, v := range t.Info {
		info[k] = v
	}
	info[key] = value
	t.Info = info
	return t
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
