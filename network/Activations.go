package network

import (
	G "gorgonia.org/gorgonia"
)

// Activation wraps an activation function so that networks can record
// which nonlinearity each layer applies
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

// fwd performs the forward pass of an Activation
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return a.name
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		name: "identity",
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		name: "relu",
		f:    G.Rectify,
	}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		name: "tanh",
		f:    G.Tanh,
	}
}
