// Package policy implements parametric policies for continuous,
// scalar actions
package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nlawrance/swingup/network"
)

// Gaussian implements a Gaussian policy over scalar actions. The mean
// of the policy is predicted by a neural network, and the standard
// deviation is exp(logStd) for a single learnable, state-independent
// log standard deviation.
//
// Actions are selected by sampling from the standard normal
// ɛ ~ N(0, 1) and computing action := μ + σ * ɛ, with the exact
// Gaussian log-density of the sampled action computed in closed form
// under the same σ used for sampling.
//
// Given a batch of continuous actions taken in a batch of states, a
// Gaussian can also compute the log probability of selecting each of
// those actions through its computational graph. This is what makes
// gradients of a policy-gradient loss with respect to the policy
// parameters well-defined: the log probabilities are recomputed fresh
// under the current parameters, not read back from rollouts.
type Gaussian struct {
	net    *network.MLP
	logStd *G.Node

	actions    *G.Node
	logPdfNode *G.Node
	logPdfVal  G.Value

	stdVal G.Value

	// vm is non-nil only for batch size 1, where the policy can select
	// actions on each timestep
	vm     G.VM
	normal distuv.Normal
}

// NewGaussian returns a new Gaussian policy over scalar actions for
// states of length features. The mean network is an MLP defined by
// hiddenSizes, biases, and activations (see network.NewMLP), and the
// learnable log standard deviation starts at logStdInit.
//
// When batch == 1 the policy can select actions at each timestep with
// SelectAction. When batch > 1 the policy is a batch policy: it can
// compute the log probability of a batch of recorded actions for a
// loss function, but cannot select actions. The seed parameter seeds
// the policy's action noise.
func NewGaussian(features, batch int, hiddenSizes []int, biases []bool,
	activations []*network.Activation, init G.InitWFn, logStdInit float64,
	seed uint64) (*Gaussian, error) {
	g := G.NewGraph()

	net, err := network.NewMLP(features, batch, g, hiddenSizes, biases,
		init, activations)
	if err != nil {
		return nil, fmt.Errorf("newgaussian: could not create mean "+
			"network: %v", err)
	}

	logStd := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(1),
		G.WithName("log std"),
		G.WithInit(G.ValuesOf(logStdInit)),
	)

	return newGaussian(net, logStd, seed)
}

// newGaussian wires the sampling and log-pdf machinery around an
// existing mean network and log standard deviation node, which must
// share a graph
func newGaussian(net *network.MLP, logStd *G.Node, seed uint64) (*Gaussian,
	error) {
	g := net.Graph()
	if logStd.Graph() != g {
		return nil, fmt.Errorf("newgaussian: log std node must share the " +
			"mean network's graph")
	}

	std := G.Must(G.Exp(logStd))

	actions := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("actions"),
		G.WithShape(net.BatchSize(), 1),
		G.WithInit(G.Zeroes()),
	)
	logPdfNode := logPdf(net.Prediction(), logStd, std, actions)

	pol := &Gaussian{
		net:        net,
		logStd:     logStd,
		actions:    actions,
		logPdfNode: logPdfNode,
		normal: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewSource(seed),
		},
	}

	G.Read(pol.logPdfNode, &pol.logPdfVal)
	G.Read(std, &pol.stdVal)

	// Actions can be selected at each timestep only with a batch size
	// of 1
	if net.BatchSize() == 1 {
		pol.vm = G.NewTapeMachine(g)
	}

	return pol, nil
}

// logPdf adds nodes to the computational graph for computing the log
// probability of actions under a Gaussian with the given mean and
// standard deviation:
//
//	logPdf = -(a - μ)^2 / (2σ^2) - log(σ) - log(√(2π))
//
// The mean and actions nodes have shape (batch, 1); logStd and std
// have shape (1) and broadcast along the batch dimension.
func logPdf(mean, logStd, std, actions *G.Node) *G.Node {
	negativeHalf := G.NewConstant(-0.5)
	two := G.NewConstant(2.0)

	exponent := G.Must(G.Sub(actions, mean))
	exponent = G.Must(G.BroadcastHadamardDiv(exponent, std, nil, []byte{0}))
	exponent = G.Must(G.Pow(exponent, two))
	exponent = G.Must(G.HadamardProd(negativeHalf, exponent))

	term3 := G.NewConstant(math.Log(math.Sqrt(2 * math.Pi)))
	terms := G.Must(G.Add(logStd, term3))

	logProb := G.Must(G.BroadcastSub(exponent, terms, nil, []byte{0}))
	return G.Must(G.Ravel(logProb))
}

// LogDensity returns the log probability density of a scalar action
// under a Gaussian with the given mean and log standard deviation.
// This is the same closed form the policy's computational graph
// computes, evaluated without building a distribution object.
func LogDensity(action, mean, logStd float64) float64 {
	std := math.Exp(logStd)
	diff := action - mean
	return -(diff*diff)/(2*std*std) - logStd - math.Log(math.Sqrt(2*math.Pi))
}

// SelectAction samples an action for the argument state from the
// policy's current Gaussian, returning the action and its exact log
// probability under the distribution it was sampled from. SelectAction
// consumes the policy's random number stream but has no other side
// effects.
func (p *Gaussian) SelectAction(state *mat.VecDense) (float64, float64) {
	if size := p.net.BatchSize(); size != 1 {
		panic(fmt.Sprintf("selectaction: action selection can only be done "+
			"with a policy with batch size 1 \n\twant(1) \n\thave(%v)", size))
	}

	if err := p.net.SetInput(state.RawVector().Data); err != nil {
		panic(fmt.Sprintf("selectaction: cannot set input: %v", err))
	}
	if err := p.vm.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run policy VM: %v", err))
	}
	defer p.vm.Reset()

	mean := p.net.Output().Data().([]float64)[0]
	logStd := p.LogStd()

	eps := p.normal.Rand()
	action := mean + math.Exp(logStd)*eps

	return action, LogDensity(action, mean, logStd)
}

// LogPdfOf sets the state and action inputs of the policy's
// computational graph to the argument states and actions so that when
// a VM of the graph is run, the log probability of each action in its
// corresponding state is computed and stored in the node returned by
// LogPdfNode. The states argument is the row-major flattening of a
// (batch, features) matrix and actions holds one scalar action per
// row.
//
// LogPdfOf does not run the graph itself: the log probabilities are
// generally needed inside a loss function, and it is the loss
// function's VM that runs the forward pass.
func (p *Gaussian) LogPdfOf(states, actions []float64) (*G.Node, error) {
	if err := p.net.SetInput(states); err != nil {
		return nil, fmt.Errorf("logpdfof: could not set states: %v", err)
	}
	if len(actions) != p.net.BatchSize() {
		return nil, fmt.Errorf("logpdfof: illegal number of actions "+
			"\n\twant(%v)\n\thave(%v)", p.net.BatchSize(), len(actions))
	}

	actionsTensor := tensor.NewDense(
		tensor.Float64,
		[]int{p.net.BatchSize(), 1},
		tensor.WithBacking(actions),
	)
	if err := G.Let(p.actions, actionsTensor); err != nil {
		return nil, fmt.Errorf("logpdfof: could not set actions: %v", err)
	}

	return p.logPdfNode, nil
}

// LogPdfNode returns the node that holds the log probability of the
// input actions once the computational graph is run
func (p *Gaussian) LogPdfNode() *G.Node {
	return p.logPdfNode
}

// LogPdfVal returns the value of the node returned by LogPdfNode
func (p *Gaussian) LogPdfVal() G.Value {
	return p.logPdfVal
}

// LogStd returns the current value of the learnable log standard
// deviation
func (p *Gaussian) LogStd() float64 {
	return p.logStd.Value().Data().([]float64)[0]
}

// CloneWithBatch clones the policy onto a fresh computational graph
// with a new batch size, copying the current mean network weights and
// log standard deviation
func (p *Gaussian) CloneWithBatch(batch int) (*Gaussian, error) {
	net, err := p.net.CloneWithBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not clone mean "+
			"network: %v", err)
	}
	logStd := p.logStd.CloneTo(net.Graph())

	return newGaussian(net, logStd, p.normal.Src.Uint64())
}

// Set sets the parameters of the policy (mean network weights and log
// standard deviation) to be equal to those of source
func (p *Gaussian) Set(source *Gaussian) error {
	if err := p.net.Set(source.net); err != nil {
		return fmt.Errorf("set: could not set mean network: %v", err)
	}

	logStd := source.logStd.Clone()
	if err := G.Let(p.logStd, logStd.(*G.Node).Value()); err != nil {
		return fmt.Errorf("set: could not set log std: %v", err)
	}
	return nil
}

// Network returns the mean network of the policy
func (p *Gaussian) Network() *network.MLP {
	return p.net
}

// Learnables returns the learnable nodes of the policy: the mean
// network weights and the log standard deviation
func (p *Gaussian) Learnables() G.Nodes {
	netLearnables := p.net.Learnables()
	learnables := make(G.Nodes, 0, len(netLearnables)+1)
	learnables = append(learnables, netLearnables...)
	return append(learnables, p.logStd)
}

// Model returns the policy's learnable nodes with their gradients for
// a solver
func (p *Gaussian) Model() []G.ValueGrad {
	netModel := p.net.Model()
	model := make([]G.ValueGrad, 0, len(netModel)+1)
	model = append(model, netModel...)
	return append(model, p.logStd)
}
