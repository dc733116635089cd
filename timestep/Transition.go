package timestep

import "gonum.org/v1/gonum/mat"

// Transition is a single (S, A, R, S', done) tuple. Transitions are
// assembled by agents from two consecutive calls to Act and are never
// constructed by the experiment.
type Transition struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	Discount  float64
	NextState *mat.VecDense
	Done      bool
}

// NewTransition pairs the previous step and the action taken in it with
// the step that followed. The observations and the action are copied so
// that the Transition does not alias environment-owned data.
func NewTransition(step TimeStep, action *mat.VecDense,
	next TimeStep, reward float64) Transition {
	state := mat.VecDenseCopyOf(step.Observation)
	nextState := mat.VecDenseCopyOf(next.Observation)
	a := mat.VecDenseCopyOf(action)

	discount := next.Discount
	if next.Last() {
		discount = 0
	}

	return Transition{
		State:     state,
		Action:    a,
		Reward:    reward,
		Discount:  discount,
		NextState: nextState,
		Done:      next.Last(),
	}
}
