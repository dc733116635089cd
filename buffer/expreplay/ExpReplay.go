// Package expreplay implements experience replay buffers that store
// transitions in a fixed capacity ring, evicting the oldest transition
// first.
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Config implements a specific configuration of an experience replay
// buffer
type Config struct {
	SampleMethod      SelectorType `yaml:"sample_method"`
	SampleSize        int          `yaml:"sample_size"`
	MaxReplayCapacity int          `yaml:"max_capacity"`
	MinReplayCapacity int          `yaml:"min_capacity"`
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.SampleSize < 1 {
		return fmt.Errorf("validate: sample size must be positive"+
			"\n\thave(%v)", c.SampleSize)
	}
	if c.MaxReplayCapacity < 1 {
		return fmt.Errorf("validate: maximum capacity must be positive"+
			"\n\thave(%v)", c.MaxReplayCapacity)
	}
	if c.MinReplayCapacity < 1 || c.MinReplayCapacity > c.MaxReplayCapacity {
		return fmt.Errorf("validate: minimum capacity must be in [1, %v]"+
			"\n\thave(%v)", c.MaxReplayCapacity, c.MinReplayCapacity)
	}
	switch c.SampleMethod {
	case "", Uniform, Fifo:
		return nil
	default:
		return fmt.Errorf("validate: unknown sample method %q",
			c.SampleMethod)
	}
}

// Create creates and returns the buffer described by the Config for
// transitions with the given feature and action sizes
func (c Config) Create(featureSize, actionSize int,
	seed uint64) (*Buffer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	sampler, err := NewSelector(c.SampleMethod, c.SampleSize, seed)
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	return New(sampler, c.MinReplayCapacity, c.MaxReplayCapacity,
		featureSize, actionSize)
}

// Batch is a batch of transitions sampled from a Buffer. Each row of
// States, Actions, and NextStates is a single transition.
type Batch struct {
	States     *mat.Dense
	Actions    *mat.Dense
	Rewards    []float64
	Discounts  []float64
	NextStates *mat.Dense
}

// Len returns the number of transitions in the batch
func (b Batch) Len() int {
	return len(b.Rewards)
}

// Buffer implements an experience replay buffer where transitions are
// removed in a FiFo manner once the buffer is full. Terminal
// transitions are stored with a discount of 0.
type Buffer struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	discountCache  []float64
	nextStateCache []float64

	// next is the index that the next transition is written to
	next   int
	isFull bool

	sampler Selector

	minCapacity int
	maxCapacity int
	featureSize int
	actionSize  int
}

// New returns a new Buffer. The sampler determines how data is sampled
// from the buffer. The minCapacity parameter determines the minimum
// number of samples that should be in the buffer before sampling is
// allowed, and the maxCapacity parameter determines the maximum number
// of samples allowed in the buffer at any given time.
func New(sampler Selector, minCapacity, maxCapacity, featureSize,
	actionSize int) (*Buffer, error) {
	if minCapacity < 1 || minCapacity > maxCapacity {
		return nil, fmt.Errorf("new: minimum capacity must be in [1, %v]"+
			"\n\thave(%v)", maxCapacity, minCapacity)
	}
	if featureSize < 1 || actionSize < 1 {
		return nil, fmt.Errorf("new: feature and action sizes must be "+
			"positive\n\thave(%v, %v)", featureSize, actionSize)
	}

	return &Buffer{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity*actionSize),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),
		sampler:        sampler,
		minCapacity:    minCapacity,
		maxCapacity:    maxCapacity,
		featureSize:    featureSize,
		actionSize:     actionSize,
	}, nil
}

// Add adds a transition to the Buffer, overwriting the oldest
// transition if the Buffer is full
func (b *Buffer) Add(t timestep.Transition) error {
	if t.State.Len() != b.featureSize || t.NextState.Len() != b.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)\n\thave(%v)",
			b.featureSize, t.State.Len())
	}
	if t.Action.Len() != b.actionSize {
		return fmt.Errorf("add: invalid action size \n\twant(%v)\n\thave(%v)",
			b.actionSize, t.Action.Len())
	}

	index := b.next
	copyVec(b.stateCache[index*b.featureSize:], t.State)
	copyVec(b.nextStateCache[index*b.featureSize:], t.NextState)
	copyVec(b.actionCache[index*b.actionSize:], t.Action)
	b.rewardCache[index] = t.Reward
	b.discountCache[index] = t.Discount
	if t.Done {
		b.discountCache[index] = 0
	}

	b.next = (b.next + 1) % b.maxCapacity
	if b.next == 0 {
		b.isFull = true
	}
	return nil
}

// Sample samples and returns a batch of transitions from the Buffer
func (b *Buffer) Sample() (Batch, error) {
	if b.Capacity() == 0 {
		return Batch{}, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if b.Capacity() < b.MinCapacity() {
		return Batch{}, &ExpReplayError{Op: "sample",
			Err: errInsufficientSamples}
	}

	positions := b.sampler.choose(b.Capacity())
	n := len(positions)
	batch := Batch{
		States:     mat.NewDense(n, b.featureSize, nil),
		Actions:    mat.NewDense(n, b.actionSize, nil),
		Rewards:    make([]float64, n),
		Discounts:  make([]float64, n),
		NextStates: mat.NewDense(n, b.featureSize, nil),
	}
	for i, pos := range positions {
		index := b.index(pos)
		f := index * b.featureSize
		a := index * b.actionSize
		batch.States.SetRow(i, b.stateCache[f:f+b.featureSize])
		batch.NextStates.SetRow(i, b.nextStateCache[f:f+b.featureSize])
		batch.Actions.SetRow(i, b.actionCache[a:a+b.actionSize])
		batch.Rewards[i] = b.rewardCache[index]
		batch.Discounts[i] = b.discountCache[index]
	}
	return batch, nil
}

// index converts a position in insertion order to a cache index
func (b *Buffer) index(pos int) int {
	if !b.isFull {
		return pos
	}
	return (b.next + pos) % b.maxCapacity
}

// Capacity returns the current number of transitions in the Buffer
func (b *Buffer) Capacity() int {
	if b.isFull {
		return b.maxCapacity
	}
	return b.next
}

// MaxCapacity returns the maximum number of transitions allowed in the
// Buffer
func (b *Buffer) MaxCapacity() int {
	return b.maxCapacity
}

// MinCapacity returns the minimum number of transitions required in the
// Buffer before sampling is allowed
func (b *Buffer) MinCapacity() int {
	return b.minCapacity
}

// BatchSize returns the number of transitions sampled by Sample
func (b *Buffer) BatchSize() int {
	return b.sampler.BatchSize()
}

func copyVec(dst []float64, v mat.Vector) {
	for i := 0; i < v.Len(); i++ {
		dst[i] = v.AtVec(i)
	}
}
