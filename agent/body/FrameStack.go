// Package body implements wrappers which sit between an environment
// and an agent, altering what the agent perceives.
package body

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/preset"
	"github.com/samuelfneumann/autolearn/spec"
	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
	"gonum.org/v1/gonum/mat"
)

// stackedEnv exposes the observation specification of size stacked
// observations of the embedded Environment. It is only used to size
// the wrapped agent.
type stackedEnv struct {
	environment.Environment
	size int
}

func (s stackedEnv) ObservationSpec() spec.Environment {
	inner := s.Environment.ObservationSpec()
	n := inner.Dims()

	shape := mat.NewVecDense(n*s.size, nil)
	low := mat.NewVecDense(n*s.size, nil)
	high := mat.NewVecDense(n*s.size, nil)
	for k := 0; k < s.size; k++ {
		for i := 0; i < n; i++ {
			low.SetVec(k*n+i, inner.LowerBound.AtVec(i))
			high.SetVec(k*n+i, inner.UpperBound.AtVec(i))
		}
	}
	return spec.NewEnvironment(shape, inner.Type, low, high, inner.Cardinality)
}

type frameStackPreset struct {
	inner preset.Preset
	size  int
}

// FrameStack returns a Preset whose agents see the concatenation of
// the last size observations instead of the most recent one. At the
// start of each episode the stack is filled with copies of the first
// observation, oldest first.
func FrameStack(inner preset.Preset, size int) preset.Preset {
	return &frameStackPreset{inner: inner, size: size}
}

func (f *frameStackPreset) Name() string {
	return f.inner.Name()
}

func (f *frameStackPreset) Validate() error {
	if f.size < 1 {
		return preset.Invalid(f.Name(), "frame_stack",
			fmt.Errorf("stack size must be positive\n\thave(%v)", f.size))
	}
	return f.inner.Validate()
}

func (f *frameStackPreset) Instantiate(env environment.Environment,
	w writer.Writer) (agent.Agent, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	inner, err := f.inner.Instantiate(stackedEnv{env, f.size}, w)
	if err != nil {
		return nil, err
	}
	return &frameStack{Agent: inner, size: f.size}, nil
}

// frameStack is an agent.Agent which stacks observations before
// passing them to the embedded Agent
type frameStack struct {
	agent.Agent
	size   int
	frames []*mat.VecDense
}

func (f *frameStack) Act(state ts.TimeStep, reward float64) (*mat.VecDense,
	error) {
	obs := mat.VecDenseCopyOf(state.Observation)
	if state.First() || len(f.frames) == 0 {
		f.frames = f.frames[:0]
		for i := 0; i < f.size; i++ {
			f.frames = append(f.frames, obs)
		}
	} else {
		f.frames = append(f.frames[1:], obs)
	}

	n := obs.Len()
	stacked := mat.NewVecDense(n*f.size, nil)
	for k, frame := range f.frames {
		stacked.SliceVec(k*n, (k+1)*n).(*mat.VecDense).CopyVec(frame)
	}
	state.Observation = stacked
	return f.Agent.Act(state, reward)
}
