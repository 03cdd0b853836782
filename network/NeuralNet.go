// Package network implements feed forward neural networks as Gorgonia
// computational graphs
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron with a single output node
// per sample. The batch dimension of the input is fixed at
// construction; to evaluate a different number of samples, clone the
// network with CloneWithBatch.
//
// An MLP only builds the forward graph. Loss construction, gradient
// computation, and virtual machines are left to the caller, which can
// freely add nodes to the network's graph.
type MLP struct {
	g      *G.ExprGraph
	layers []*fcLayer
	input  *G.Node

	numInputs int
	batchSize int

	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMLP creates and returns a new multi-layered perceptron on graph g
// taking batch rows of features inputs each and producing one output
// per row.
//
// The MLP has len(hiddenSizes) + 1 layers: for index i, hiddenSizes[i]
// is the number of units in hidden layer i, biases[i] determines
// whether that layer has a bias unit, and activations[i] is its
// activation function. A final linear layer with a bias unit and no
// activation is always added to produce the output. The init parameter
// determines the weight initialization scheme.
func NewMLP(features, batch int, g *G.ExprGraph, hiddenSizes []int,
	biases []bool, init G.InitWFn, activations []*Activation) (*MLP, error) {
	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("newmlp: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("newmlp: invalid number of biases"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(biases))
	}
	if features <= 0 || batch <= 0 {
		return nil, fmt.Errorf("newmlp: features and batch must be "+
			"positive \n\thave(%d, %d)", features, batch)
	}

	// Final linear layer producing the single output
	hiddenSizes = append(append([]int{}, hiddenSizes...), 1)
	biases = append(append([]bool{}, biases...), true)
	activations = append(append([]*Activation{}, activations...), Identity())

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(hiddenSizes))
	in := features
	for i := range hiddenSizes {
		layers[i] = newFCLayer(g, in, hiddenSizes[i], biases[i], init,
			activations[i], i)
		in = hiddenSizes[i]
	}

	net := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}

	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newmlp: could not compute forward pass: %v",
			err)
	}

	return net, nil
}

// fwd runs the forward pass of the MLP on the input node, recording
// the prediction node and a Read of its value
func (e *MLP) fwd(input *G.Node) error {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return nil
}

// CloneWithBatch clones the MLP onto a fresh computational graph with a
// new input batch size, copying the current weight values
func (e *MLP) CloneWithBatch(batch int) (*MLP, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("clonewithbatch: batch must be positive "+
			"\n\thave(%d)", batch)
	}

	g := G.NewGraph()
	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, e.numInputs),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(e.layers))
	for i := range e.layers {
		layers[i] = e.layers[i].cloneTo(g)
	}

	net := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numInputs:   e.numInputs,
		batchSize:   batch,
		hiddenSizes: e.hiddenSizes,
		biases:      e.biases,
		activations: e.activations,
	}

	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithbatch: %v", err)
	}

	return net, nil
}

// Graph returns the computational graph of the MLP
func (e *MLP) Graph() *G.ExprGraph {
	return e.g
}

// BatchSize returns the number of input rows the MLP evaluates per
// forward pass
func (e *MLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single input row
func (e *MLP) Features() int {
	return e.numInputs
}

// SetInput sets the value of the input node before running the forward
// pass. The input is the row-major flattening of a (batch, features)
// matrix.
func (e *MLP) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of the MLP to be equal to the weights of source
func (dest *MLP) Set(source *MLP) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(nodes) != len(sourceNodes) {
		return fmt.Errorf("set: differing network architectures "+
			"\n\twant(%v learnables)\n\thave(%v)", len(nodes),
			len(sourceNodes))
	}
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the MLP
func (e *MLP) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(e.layers))
		for i := range e.layers {
			learnables = append(learnables, e.layers[i].weights)
			if bias := e.layers[i].bias; bias != nil {
				learnables = append(learnables, bias)
			}
		}
		e.learnables = learnables
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients for a solver
func (e *MLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(e.layers))
		for _, node := range e.Learnables() {
			model = append(model, node)
		}
		e.model = model
	}
	return e.model
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP, of shape (batch, 1)
func (e *MLP) Prediction() *G.Node {
	return e.prediction
}

// Output returns the value of the prediction node after the graph has
// been run
func (e *MLP) Output() G.Value {
	return e.predVal
}
