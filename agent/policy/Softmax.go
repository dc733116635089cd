package policy

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Softmax implements a softmax (Boltzmann) policy over action logits
type Softmax struct {
	source rand.Source
}

// NewSoftmax returns a new Softmax policy whose random choices are
// determined by seed
func NewSoftmax(seed uint64) *Softmax {
	return &Softmax{source: rand.NewSource(seed)}
}

// Select samples an action with probability proportional to the
// exponential of its logit
func (s *Softmax) Select(logits []float64) int {
	dist := distuv.NewCategorical(Probabilities(logits), s.source)
	return int(dist.Rand())
}

// Probabilities returns the softmax of the logits
func Probabilities(logits []float64) []float64 {
	logZ := floats.LogSumExp(logits)
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(l - logZ)
	}
	return probs
}
