package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestGreedy(t *testing.T) {
	assert.Equal(t, 2, Greedy([]float64{0, 1, 3, 2}))
	assert.Equal(t, 0, Greedy([]float64{1, 1}))
}

func TestEGreedyZeroEpsilonIsGreedy(t *testing.T) {
	e := NewEGreedy(1)
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, e.Select([]float64{0, 5, 2}, 0))
	}
}

func TestEGreedyExplores(t *testing.T) {
	e := NewEGreedy(2)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[e.Select([]float64{0, 5, 2}, 1)]++
	}
	for _, c := range counts {
		assert.Greater(t, c, 800)
	}
}

func TestEGreedySeeded(t *testing.T) {
	a, b := NewEGreedy(7), NewEGreedy(7)
	for i := 0; i < 100; i++ {
		values := []float64{0, 1}
		assert.Equal(t, a.Select(values, 0.5), b.Select(values, 0.5))
	}
}

func TestSoftmax(t *testing.T) {
	probs := Probabilities([]float64{1, 1, 1, 1})
	for _, p := range probs {
		assert.InDelta(t, 0.25, p, 1e-12)
	}

	probs = Probabilities([]float64{1000, 0})
	assert.InDelta(t, 1.0, floats.Sum(probs), 1e-12)
	assert.InDelta(t, 1.0, probs[0], 1e-12)

	s := NewSoftmax(3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, s.Select([]float64{1000, 0}))
	}
}
