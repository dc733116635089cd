package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/autolearn/timestep"
	"github.com/samuelfneumann/autolearn/writer"
)

// Scalar names reported by Episode
const (
	ReturnScalar = "episode/return"
	LengthScalar = "episode/length"
)

// Episode tracks the return and length of each episode in a run and
// reports them to a Writer once the episode finishes. The step of both
// scalars is the number of the finished episode, starting at 1.
//
// An episode must finish for its data to be reported. If the last
// episode of a run does not finish, nothing is reported for it.
type Episode struct {
	w        writer.Writer
	ret      float64
	episodes int
}

// NewEpisode returns a new Episode tracker reporting to w
func NewEpisode(w writer.Writer) *Episode {
	return &Episode{w: w}
}

// Track accumulates the reward of step into the return of the current
// episode. The reward of a First step is ignored.
func (e *Episode) Track(step ts.TimeStep) error {
	if step.First() {
		e.ret = 0
		return nil
	}
	e.ret += step.Reward
	if !step.Last() {
		return nil
	}

	e.episodes++
	if err := e.w.AddScalar(ReturnScalar, e.ret, e.episodes); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	if err := e.w.AddScalar(LengthScalar, float64(step.Number),
		e.episodes); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	return nil
}

// Episodes returns the number of finished episodes tracked
func (e *Episode) Episodes() int {
	return e.episodes
}

// Close is a no-op; the Writer is owned by the caller
func (e *Episode) Close() error {
	return nil
}
