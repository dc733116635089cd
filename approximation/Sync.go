package approximation

import "fmt"

// SyncType determines how a target network tracks its online network
type SyncType string

const (
	// None maintains no target network. Target evaluates the online
	// function.
	None SyncType = ""

	// Hard copies the online parameters into the target every
	// Interval triggers
	Hard SyncType = "hard"

	// Polyak blends the online parameters into the target every
	// Interval triggers: target ← τ online + (1 - τ) target
	Polyak SyncType = "polyak"
)

// Trigger determines what counts towards a target synchronization
type Trigger string

const (
	OnUpdate  Trigger = "update"
	OnEpisode Trigger = "episode"
)

// Sync describes the target synchronization policy of an
// Approximation. Between synchronizations the target is read-only.
type Sync struct {
	Type     SyncType `yaml:"type"`
	Interval int      `yaml:"interval"`
	Tau      float64  `yaml:"tau"`
	Trigger  Trigger  `yaml:"trigger"`
}

// NoSync returns a policy that maintains no target
func NoSync() Sync {
	return Sync{Type: None}
}

// HardSync returns a policy that copies the online parameters into the
// target every n updates
func HardSync(n int) Sync {
	return Sync{Type: Hard, Interval: n, Trigger: OnUpdate}
}

// PolyakSync returns a policy that blends the online parameters into
// the target after every update
func PolyakSync(tau float64) Sync {
	return Sync{Type: Polyak, Interval: 1, Tau: tau, Trigger: OnUpdate}
}

// Validate returns an error if the Sync is invalid
func (s Sync) Validate() error {
	switch s.Type {
	case None:
		return nil
	case Hard:
		if s.Interval < 1 {
			return fmt.Errorf("hard target sync interval must be positive"+
				"\n\thave(%v)", s.Interval)
		}
	case Polyak:
		if !(s.Tau > 0 && s.Tau <= 1) {
			return fmt.Errorf("polyak tau must be in (0, 1]\n\thave(%v)",
				s.Tau)
		}
		if s.Interval < 0 {
			return fmt.Errorf("polyak target sync interval must be "+
				"non-negative\n\thave(%v)", s.Interval)
		}
	default:
		return fmt.Errorf("unknown target sync type %q", s.Type)
	}

	switch s.Trigger {
	case "", OnUpdate, OnEpisode:
		return nil
	default:
		return fmt.Errorf("unknown target sync trigger %q", s.Trigger)
	}
}

// interval returns the number of triggers between synchronizations
func (s Sync) interval() int {
	if s.Interval < 1 {
		return 1
	}
	return s.Interval
}

func (s Sync) trigger() Trigger {
	if s.Trigger == "" {
		return OnUpdate
	}
	return s.Trigger
}
