// Package tracker implements Trackers, which observe the TimeSteps of
// a run and report data derived from them
package tracker

import (
	ts "github.com/samuelfneumann/autolearn/timestep"
)

// Tracker observes every TimeStep an environment produces during a
// run, in order. Close is called once the run is done.
type Tracker interface {
	Track(step ts.TimeStep) error
	Close() error
}

// multi tracks TimeSteps with many Trackers
type multi []Tracker

// NewMulti returns a Tracker that forwards to each of trackers in turn
func NewMulti(trackers ...Tracker) Tracker {
	return multi(trackers)
}

func (m multi) Track(step ts.TimeStep) error {
	for _, t := range m {
		if err := t.Track(step); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var err error
	for _, t := range m {
		if e := t.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
