package vpg

import (
	"fmt"

	"github.com/nlawrance/swingup/network"
)

// Config implements a configuration for a Gaussian-policy vanilla
// policy gradient agent with GAE(λ) advantage estimation
type Config struct {
	// Policy mean neural net
	PolicyLayers      []int
	PolicyBiases      []bool
	PolicyActivations []*network.Activation

	// State value function neural net
	ValueFnLayers      []int
	ValueFnBiases      []bool
	ValueFnActivations []*network.Activation

	// Initial value of the learnable log standard deviation of the
	// policy
	InitLogStd float64

	PolicyLearningRate float64
	ValueLearningRate  float64

	// Number of gradient steps to take for the value function per
	// epoch
	ValueGradSteps int

	// BatchSize is the minimum number of transitions collected per
	// epoch. Episodes are never split, so an epoch's batch may
	// overshoot this floor by at most one episode.
	BatchSize int

	// MaxSteps is the step cap per episode
	MaxSteps int

	// Generalized Advantage Estimation
	Lambda float64
	Gamma  float64
}

// DefaultConfig returns a Config with default hyperparameter values
func DefaultConfig() Config {
	return Config{
		PolicyLayers:      []int{64, 64},
		PolicyBiases:      []bool{true, true},
		PolicyActivations: []*network.Activation{network.TanH(), network.TanH()},

		ValueFnLayers:      []int{64, 64},
		ValueFnBiases:      []bool{true, true},
		ValueFnActivations: []*network.Activation{network.TanH(), network.TanH()},

		InitLogStd: 0.0,

		PolicyLearningRate: 3e-4,
		ValueLearningRate:  3e-4,
		ValueGradSteps:     1,

		BatchSize: 1000,
		MaxSteps:  200,

		Lambda: 0.97,
		Gamma:  0.99,
	}
}

// Validate checks a Config to ensure it is a valid configuration
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("cannot have batch size < 1")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("cannot have max steps < 1")
	}
	if c.ValueGradSteps <= 0 {
		return fmt.Errorf("cannot have value gradient steps < 1")
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		return fmt.Errorf("gamma must be in (0, 1) \n\thave(%v)", c.Gamma)
	}
	if c.Lambda <= 0 || c.Lambda >= 1 {
		return fmt.Errorf("lambda must be in (0, 1) \n\thave(%v)", c.Lambda)
	}
	return nil
}
