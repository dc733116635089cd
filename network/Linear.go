package network

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/initwfn"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a linear function approximator y = xW + b with
// analytic gradients.
type Linear struct {
	features, outputs int

	weights, bias   *mat.Dense
	dWeights, dBias *mat.Dense

	input *mat.Dense
}

// NewLinear returns a new Linear function. Weights are initialized
// using init seeded with seed, and the bias is initialized to zero. If
// init is nil, weights are initialized to zero.
func NewLinear(features, outputs int, init *initwfn.InitWFn,
	seed uint64) (*Linear, error) {
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newLinear: features and outputs must be "+
			"positive\n\thave(%v, %v)", features, outputs)
	}

	weights := mat.NewDense(features, outputs, nil)
	if init != nil {
		weights = mat.NewDense(features, outputs, init.Fn(seed)(features,
			outputs))
	}

	return &Linear{
		features: features,
		outputs:  outputs,
		weights:  weights,
		bias:     mat.NewDense(1, outputs, nil),
		dWeights: mat.NewDense(features, outputs, nil),
		dBias:    mat.NewDense(1, outputs, nil),
	}, nil
}

// Forward computes the output of the Linear function and caches the
// input for Backward
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	out, err := l.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	l.input = mat.DenseCopyOf(x)
	return out, nil
}

// Predict computes the output of the Linear function
func (l *Linear) Predict(x *mat.Dense) (*mat.Dense, error) {
	if err := checkInput("predict", x, l.features); err != nil {
		return nil, err
	}

	batch, _ := x.Dims()
	out := mat.NewDense(batch, l.outputs, nil)
	out.Mul(x, l.weights)

	bias := l.bias.RawRowView(0)
	for i := 0; i < batch; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}
	return out, nil
}

// Backward accumulates gradients of the weights and bias
func (l *Linear) Backward(dOut *mat.Dense) error {
	if l.input == nil {
		return ErrNoForward
	}

	batch, _ := l.input.Dims()
	r, c := dOut.Dims()
	if r != batch || c != l.outputs {
		return fmt.Errorf("backward: invalid gradient shape\n\twant(%v, %v)"+
			"\n\thave(%v, %v)", batch, l.outputs, r, c)
	}

	var dW mat.Dense
	dW.Mul(l.input.T(), dOut)
	l.dWeights.Add(l.dWeights, &dW)

	db := l.dBias.RawRowView(0)
	for i := 0; i < r; i++ {
		for j, v := range dOut.RawRowView(i) {
			db[j] += v
		}
	}
	return nil
}

// Params returns the weights and bias
func (l *Linear) Params() []*mat.Dense {
	return []*mat.Dense{l.weights, l.bias}
}

// Grads returns the accumulated gradients, in the same order as Params
func (l *Linear) Grads() []*mat.Dense {
	return []*mat.Dense{l.dWeights, l.dBias}
}

// ZeroGrad zeroes the accumulated gradients
func (l *Linear) ZeroGrad() {
	l.dWeights.Zero()
	l.dBias.Zero()
}

// Clone returns a deep copy of the Linear function
func (l *Linear) Clone() Function {
	return &Linear{
		features: l.features,
		outputs:  l.outputs,
		weights:  mat.DenseCopyOf(l.weights),
		bias:     mat.DenseCopyOf(l.bias),
		dWeights: mat.NewDense(l.features, l.outputs, nil),
		dBias:    mat.NewDense(1, l.outputs, nil),
	}
}

// Features returns the number of input features
func (l *Linear) Features() int { return l.features }

// Outputs returns the number of outputs
func (l *Linear) Outputs() int { return l.outputs }
