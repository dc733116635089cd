package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// SelectorType determines how data is sampled from a buffer
type SelectorType string

const (
	Uniform SelectorType = "uniform"
	Fifo    SelectorType = "fifo"
)

// Selector implements functionality for choosing how data should be
// sampled from an experience replay buffer
type Selector interface {
	// choose selects batch positions in insertion order, where 0 is the
	// oldest element of a buffer holding size elements
	choose(size int) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// NewSelector returns a new Selector of the given type
func NewSelector(t SelectorType, samples int, seed uint64) (Selector, error) {
	if samples < 1 {
		return nil, fmt.Errorf("newSelector: batch size must be positive"+
			"\n\thave(%v)", samples)
	}
	switch t {
	case Uniform, "":
		return NewUniformSelector(samples, seed), nil
	case Fifo:
		return NewFifoSelector(samples), nil
	default:
		return nil, fmt.Errorf("newSelector: unknown selector type %q", t)
	}
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly, with replacement
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer
func NewUniformSelector(samples int, seed uint64) Selector {
	return &uniformSelector{
		samples: samples,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of positions at which to draw data from the
// buffer
func (u *uniformSelector) choose(size int) []int {
	selected := make([]int, u.BatchSize())
	for i := range selected {
		selected[i] = u.rng.Intn(size)
	}
	return selected
}

// fifoSelector is a Selector which selects the oldest data in an
// experience replay buffer.
type fifoSelector struct {
	samples int
}

// NewFifoSelector returns a new Selector which draws data from an
// experience replay buffer in as FiFo.
func NewFifoSelector(samples int) Selector {
	return &fifoSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (f *fifoSelector) BatchSize() int {
	return f.samples
}

// choose selects the oldest positions in the buffer. If fewer elements
// than the batch size are in the buffer, all are selected.
func (f *fifoSelector) choose(size int) []int {
	n := f.BatchSize()
	if size < n {
		n = size
	}
	selected := make([]int, n)
	for i := range selected {
		selected[i] = i
	}
	return selected
}
