package network

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/initwfn"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. The MLP has
// len(hiddenSizes) + 1 layers, where the final layer is linear and has
// one output node per output. Every layer has a bias unit.
//
// Parameters are stored in gonum matrices. Computational graphs that
// compute predictions and gradients are built lazily, once for each
// batch size the MLP sees, and parameters are bound into these graphs
// before each run.
type MLP struct {
	features, outputs int
	hiddenSizes       []int
	activations       []*Activation

	// weights[i] has shape (in, out) and biases[i] has shape (1, out)
	weights, biases   []*mat.Dense
	dWeights, dBiases []*mat.Dense

	input *mat.Dense

	predGraphs map[int]*mlpGraph
	gradGraphs map[int]*mlpGraph
}

// mlpGraph is a computational graph for a single batch size
type mlpGraph struct {
	g        *G.ExprGraph
	input    *G.Node
	upstream *G.Node
	params   G.Nodes

	predVal  G.Value
	gradVals []G.Value

	vm G.VM
}

// NewMLP creates and returns a new multi-layered perceptron.
//
// The function works such that for index i, hiddenSizes[i] is the
// number of nodes in hidden layer i and activations[i] is the
// activation function for hidden layer i. Weights are initialized
// using init seeded with seed, and biases are initialized to zero.
func NewMLP(features, outputs int, hiddenSizes []int,
	activations []*Activation, init *initwfn.InitWFn,
	seed uint64) (*MLP, error) {
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newMLP: features and outputs must be "+
			"positive\n\thave(%v, %v)", features, outputs)
	}
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	for i, size := range hiddenSizes {
		if size <= 0 {
			return nil, fmt.Errorf("newMLP: hidden layer %v must have a "+
				"positive size\n\thave(%v)", i, size)
		}
		if activations[i] == nil {
			return nil, fmt.Errorf("newMLP: nil activation for layer %v", i)
		}
	}
	if init == nil {
		return nil, fmt.Errorf("newMLP: nil weight initializer")
	}

	// Final linear layer
	sizes := append(append([]int{}, hiddenSizes...), outputs)
	acts := append(append([]*Activation{}, activations...), Identity())

	fill := init.Fn(seed)
	weights := make([]*mat.Dense, len(sizes))
	biases := make([]*mat.Dense, len(sizes))
	in := features
	for i, out := range sizes {
		weights[i] = mat.NewDense(in, out, fill(in, out))
		biases[i] = mat.NewDense(1, out, nil)
		in = out
	}

	return &MLP{
		features:    features,
		outputs:     outputs,
		hiddenSizes: append([]int{}, hiddenSizes...),
		activations: acts,
		weights:     weights,
		biases:      biases,
		dWeights:    zeroesLike(weights),
		dBiases:     zeroesLike(biases),
		predGraphs:  make(map[int]*mlpGraph),
		gradGraphs:  make(map[int]*mlpGraph),
	}, nil
}

// Forward computes the output of the MLP and caches the input for
// Backward
func (m *MLP) Forward(x *mat.Dense) (*mat.Dense, error) {
	out, err := m.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	m.input = mat.DenseCopyOf(x)
	return out, nil
}

// Predict computes the output of the MLP
func (m *MLP) Predict(x *mat.Dense) (*mat.Dense, error) {
	if err := checkInput("predict", x, m.features); err != nil {
		return nil, err
	}
	batch, _ := x.Dims()

	graph, err := m.graph(batch, false)
	if err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	if err := m.run(graph, x, nil); err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	defer graph.vm.Reset()

	data, err := valueData(graph.predVal)
	if err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	return mat.NewDense(batch, m.outputs, data), nil
}

// Backward accumulates the gradients of all weights and biases
func (m *MLP) Backward(dOut *mat.Dense) error {
	if m.input == nil {
		return ErrNoForward
	}
	batch, _ := m.input.Dims()
	r, c := dOut.Dims()
	if r != batch || c != m.outputs {
		return fmt.Errorf("backward: invalid gradient shape\n\twant(%v, %v)"+
			"\n\thave(%v, %v)", batch, m.outputs, r, c)
	}

	graph, err := m.graph(batch, true)
	if err != nil {
		return fmt.Errorf("backward: %v", err)
	}
	if err := m.run(graph, m.input, dOut); err != nil {
		return fmt.Errorf("backward: %v", err)
	}
	defer graph.vm.Reset()

	grads := m.Grads()
	for i, v := range graph.gradVals {
		data, err := valueData(v)
		if err != nil {
			return fmt.Errorf("backward: %v", err)
		}
		gr, gc := grads[i].Dims()
		grads[i].Add(grads[i], mat.NewDense(gr, gc, data))
	}
	return nil
}

// run binds the input, parameters, and upstream gradient (if any) to
// the graph and runs it
func (m *MLP) run(graph *mlpGraph, x, upstream *mat.Dense) error {
	if err := G.Let(graph.input, asTensor(x)); err != nil {
		return err
	}
	for i, p := range m.Params() {
		if err := G.Let(graph.params[i], asTensor(p)); err != nil {
			return err
		}
	}
	if upstream != nil {
		if err := G.Let(graph.upstream, asTensor(upstream)); err != nil {
			return err
		}
	}
	return graph.vm.RunAll()
}

// graph returns the computational graph for the batch size, building
// it if needed
func (m *MLP) graph(batch int, withGrad bool) (*mlpGraph, error) {
	cache := m.predGraphs
	if withGrad {
		cache = m.gradGraphs
	}
	if graph, ok := cache[batch]; ok {
		return graph, nil
	}

	graph, err := m.build(batch, withGrad)
	if err != nil {
		return nil, err
	}
	cache[batch] = graph
	return graph, nil
}

// build constructs the computational graph of the MLP for a batch size.
// Gradient graphs take the gradient of the loss with respect to the
// output as an additional input and compute the gradient of
// sum(output ⊙ upstream) with respect to each parameter.
func (m *MLP) build(batch int, withGrad bool) (*mlpGraph, error) {
	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, m.features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	params := make(G.Nodes, 0, 2*len(m.weights))
	pred := input
	var err error
	for i := range m.weights {
		in, out := m.weights[i].Dims()
		w := G.NewMatrix(g, tensor.Float64, G.WithShape(in, out),
			G.WithName(fmt.Sprintf("w%d", i)), G.WithInit(G.Zeroes()))
		b := G.NewMatrix(g, tensor.Float64, G.WithShape(1, out),
			G.WithName(fmt.Sprintf("b%d", i)), G.WithInit(G.Zeroes()))
		params = append(params, w, b)

		if pred, err = G.Mul(pred, w); err != nil {
			return nil, fmt.Errorf("build: layer %v: %v", i, err)
		}
		// Broadcast the bias to all samples along the batch dimension
		if pred, err = G.BroadcastAdd(pred, b, nil, []byte{0}); err != nil {
			return nil, fmt.Errorf("build: layer %v: %v", i, err)
		}
		if pred, err = m.activations[i].fwd(pred); err != nil {
			return nil, fmt.Errorf("build: layer %v: %v", i, err)
		}
	}

	graph := &mlpGraph{g: g, input: input, params: params}
	if !withGrad {
		G.Read(pred, &graph.predVal)
		graph.vm = G.NewTapeMachine(g)
		return graph, nil
	}

	upstream := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, m.outputs), G.WithName("upstream"),
		G.WithInit(G.Zeroes()))
	prod, err := G.HadamardProd(pred, upstream)
	if err != nil {
		return nil, fmt.Errorf("build: %v", err)
	}
	cost, err := G.Sum(prod)
	if err != nil {
		return nil, fmt.Errorf("build: %v", err)
	}
	grads, err := G.Grad(cost, params...)
	if err != nil {
		return nil, fmt.Errorf("build: could not compute gradient: %v", err)
	}

	graph.upstream = upstream
	graph.gradVals = make([]G.Value, len(grads))
	for i := range grads {
		G.Read(grads[i], &graph.gradVals[i])
	}
	graph.vm = G.NewTapeMachine(g)
	return graph, nil
}

// Params returns the parameters of the MLP, ordered as the weights
// then bias of each layer in turn
func (m *MLP) Params() []*mat.Dense {
	return interleave(m.weights, m.biases)
}

// Grads returns the accumulated gradients in the same order as Params
func (m *MLP) Grads() []*mat.Dense {
	return interleave(m.dWeights, m.dBiases)
}

// ZeroGrad zeroes the accumulated gradients
func (m *MLP) ZeroGrad() {
	for i := range m.dWeights {
		m.dWeights[i].Zero()
		m.dBiases[i].Zero()
	}
}

// Clone returns a deep copy of the MLP
func (m *MLP) Clone() Function {
	return &MLP{
		features:    m.features,
		outputs:     m.outputs,
		hiddenSizes: append([]int{}, m.hiddenSizes...),
		activations: append([]*Activation{}, m.activations...),
		weights:     copyAll(m.weights),
		biases:      copyAll(m.biases),
		dWeights:    zeroesLike(m.weights),
		dBiases:     zeroesLike(m.biases),
		predGraphs:  make(map[int]*mlpGraph),
		gradGraphs:  make(map[int]*mlpGraph),
	}
}

// Features returns the number of input features
func (m *MLP) Features() int { return m.features }

// Outputs returns the number of outputs
func (m *MLP) Outputs() int { return m.outputs }

// HiddenSizes returns the number of nodes in each hidden layer
func (m *MLP) HiddenSizes() []int {
	return append([]int{}, m.hiddenSizes...)
}

func interleave(weights, biases []*mat.Dense) []*mat.Dense {
	params := make([]*mat.Dense, 0, 2*len(weights))
	for i := range weights {
		params = append(params, weights[i], biases[i])
	}
	return params
}

// asTensor copies a matrix into a new tensor of the same shape
func asTensor(m mat.Matrix) *tensor.Dense {
	r, c := m.Dims()
	return tensor.New(tensor.WithShape(r, c),
		tensor.WithBacking(contiguous(m)))
}

// valueData copies the data out of a graph value
func valueData(v G.Value) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("graph value was not computed")
	}
	switch data := v.Data().(type) {
	case []float64:
		return append([]float64{}, data...), nil
	case float64:
		return []float64{data}, nil
	default:
		return nil, fmt.Errorf("unexpected graph value type %T", data)
	}
}
