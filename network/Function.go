// Package network implements trainable function approximators. Each
// approximator stores its parameters in gonum matrices so that
// parameters can be copied, averaged, checkpointed, and updated by a
// solver independently of how the forward and backward passes are
// computed.
package network

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNoForward is returned when Backward is called without a cached
// forward pass.
var ErrNoForward = errors.New("backward: no cached forward pass")

// Function is a differentiable function of a batch of inputs. Inputs
// are given row-wise: each row of x is a single sample with Features()
// columns, and each row of the output has Outputs() columns.
type Function interface {
	// Forward computes the output for x in training mode. The input is
	// cached so that a subsequent call to Backward can compute
	// gradients.
	Forward(x *mat.Dense) (*mat.Dense, error)

	// Backward accumulates the gradient of the loss with respect to
	// each parameter into Grads(), given the gradient dOut of the loss
	// with respect to the output of the last Forward call.
	Backward(dOut *mat.Dense) error

	// Predict computes the output for x without caching anything
	Predict(x *mat.Dense) (*mat.Dense, error)

	Params() []*mat.Dense
	Grads() []*mat.Dense
	ZeroGrad()

	// Clone returns a deep copy of the Function's parameters. The clone
	// has no cached forward pass and zeroed gradients.
	Clone() Function

	Features() int
	Outputs() int
}

// Set sets the parameters of dst to be equal to those of src
func Set(dst, src Function) error {
	d, s := dst.Params(), src.Params()
	if err := sameShapes(d, s); err != nil {
		return fmt.Errorf("set: %v", err)
	}
	for i := range d {
		d[i].Copy(s[i])
	}
	return nil
}

// Polyak sets the parameters of dst to a polyak average of its own
// parameters and those of src:
//
//	dst ← tau * src + (1 - tau) * dst
func Polyak(dst, src Function, tau float64) error {
	if tau <= 0 || tau > 1 {
		return fmt.Errorf("polyak: tau must be in (0, 1]\n\thave(%v)", tau)
	}
	d, s := dst.Params(), src.Params()
	if err := sameShapes(d, s); err != nil {
		return fmt.Errorf("polyak: %v", err)
	}
	for i := range d {
		d[i].Scale(1-tau, d[i])

		var scaled mat.Dense
		scaled.Scale(tau, s[i])
		d[i].Add(d[i], &scaled)
	}
	return nil
}

func sameShapes(a, b []*mat.Dense) error {
	if len(a) != len(b) {
		return fmt.Errorf("number of parameters differ\n\twant(%v)"+
			"\n\thave(%v)", len(a), len(b))
	}
	for i := range a {
		ar, ac := a[i].Dims()
		br, bc := b[i].Dims()
		if ar != br || ac != bc {
			return fmt.Errorf("parameter %v shape differs\n\twant(%v, %v)"+
				"\n\thave(%v, %v)", i, ar, ac, br, bc)
		}
	}
	return nil
}

// checkInput ensures x has the expected number of columns
func checkInput(op string, x *mat.Dense, features int) error {
	if x == nil {
		return fmt.Errorf("%v: nil input", op)
	}
	_, c := x.Dims()
	if c != features {
		return fmt.Errorf("%v: invalid number of features\n\twant(%v)"+
			"\n\thave(%v)", op, features, c)
	}
	return nil
}

// contiguous returns a row-major copy of the data in m
func contiguous(m mat.Matrix) []float64 {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return data
}

func zeroesLike(params []*mat.Dense) []*mat.Dense {
	grads := make([]*mat.Dense, len(params))
	for i, p := range params {
		r, c := p.Dims()
		grads[i] = mat.NewDense(r, c, nil)
	}
	return grads
}

func copyAll(params []*mat.Dense) []*mat.Dense {
	copied := make([]*mat.Dense, len(params))
	for i, p := range params {
		copied[i] = mat.DenseCopyOf(p)
	}
	return copied
}
