// Package loss implements differentiable losses over the outputs of
// function approximators. Each loss returns its value along with its
// gradient with respect to the outputs, ready to be passed to
// approximation.Approximation.Reinforce.
package loss

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/autolearn/approximation"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MSE returns the mean squared error between pred and target, averaged
// over all elements
func MSE(pred, target mat.Matrix) (approximation.Loss, error) {
	r, c := pred.Dims()
	tr, tc := target.Dims()
	if r != tr || c != tc {
		return approximation.Loss{}, fmt.Errorf("mse: shape mismatch"+
			"\n\twant(%v, %v)\n\thave(%v, %v)", r, c, tr, tc)
	}

	n := float64(r * c)
	grad := mat.NewDense(r, c, nil)
	var value float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			diff := pred.At(i, j) - target.At(i, j)
			value += diff * diff / n
			grad.Set(i, j, 2*diff/n)
		}
	}
	return approximation.Loss{Value: value, Grad: grad}, nil
}

// SelectedMSE returns the mean squared error between the output of pred
// in column actions[i] of row i and targets[i]. All other outputs
// receive zero gradient.
func SelectedMSE(pred mat.Matrix, actions []int,
	targets []float64) (approximation.Loss, error) {
	return selected("selectedMSE", pred, actions, targets,
		func(diff float64) (float64, float64) {
			return diff * diff, 2 * diff
		})
}

// SelectedHuber returns the mean Huber loss between the output of pred
// in column actions[i] of row i and targets[i]. The loss is quadratic
// for errors smaller than delta and linear otherwise.
func SelectedHuber(pred mat.Matrix, actions []int, targets []float64,
	delta float64) (approximation.Loss, error) {
	if delta <= 0 {
		return approximation.Loss{}, fmt.Errorf("selectedHuber: delta "+
			"must be positive\n\thave(%v)", delta)
	}
	return selected("selectedHuber", pred, actions, targets,
		func(diff float64) (float64, float64) {
			if math.Abs(diff) <= delta {
				return 0.5 * diff * diff, diff
			}
			return delta * (math.Abs(diff) - 0.5*delta),
				delta * math.Copysign(1, diff)
		})
}

// selected computes a loss over the selected output of each row. The
// function f returns the loss of a single error and its derivative.
func selected(op string, pred mat.Matrix, actions []int, targets []float64,
	f func(diff float64) (float64, float64)) (approximation.Loss, error) {
	r, c := pred.Dims()
	if len(actions) != r || len(targets) != r {
		return approximation.Loss{}, fmt.Errorf("%v: need one action and "+
			"target per row\n\twant(%v)\n\thave(%v, %v)", op, r, len(actions),
			len(targets))
	}

	n := float64(r)
	grad := mat.NewDense(r, c, nil)
	var value float64
	for i, a := range actions {
		if a < 0 || a >= c {
			return approximation.Loss{}, fmt.Errorf("%v: action %v out of "+
				"range [0, %v)", op, a, c)
		}
		l, d := f(pred.At(i, a) - targets[i])
		value += l / n
		grad.Set(i, a, d/n)
	}
	return approximation.Loss{Value: value, Grad: grad}, nil
}

// PolicyGradient returns the vanilla policy gradient loss of a softmax
// policy with the given logits:
//
//	L = -1/n Σᵢ advantages[i] log π(actions[i] | sᵢ)
//
// The gradient is taken with respect to the logits.
func PolicyGradient(logits mat.Matrix, actions []int,
	advantages []float64) (approximation.Loss, error) {
	r, c := logits.Dims()
	if len(actions) != r || len(advantages) != r {
		return approximation.Loss{}, fmt.Errorf("policyGradient: need one "+
			"action and advantage per row\n\twant(%v)\n\thave(%v, %v)", r,
			len(actions), len(advantages))
	}

	n := float64(r)
	grad := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	var value float64
	for i, a := range actions {
		if a < 0 || a >= c {
			return approximation.Loss{}, fmt.Errorf("policyGradient: action "+
				"%v out of range [0, %v)", a, c)
		}
		mat.Row(row, i, logits)
		logZ := floats.LogSumExp(row)
		value -= advantages[i] * (row[a] - logZ) / n

		// ∂L/∂zⱼ = -adv (1[j = a] - π(j)) / n
		for j := range row {
			p := math.Exp(row[j] - logZ)
			indicator := 0.0
			if j == a {
				indicator = 1
			}
			grad.Set(i, j, -advantages[i]*(indicator-p)/n)
		}
	}
	return approximation.Loss{Value: value, Grad: grad}, nil
}
