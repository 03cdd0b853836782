// Package environment outlines the contract that concrete environments
// must satisfy to be driven by the rollout package
package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Environment implements a simulated environment with scalar,
// continuous actions. An Environment is treated as an opaque
// transition system: Reset places it in a fresh starting state and
// returns the observation of that state, and Step advances the
// internal state given an action, returning the next observation, the
// reward for the transition, and whether the new state is terminal.
// When Step signals termination the returned observation is
// post-terminal and must not be recorded; the Environment must be
// Reset before further use.
type Environment interface {
	Reset() *mat.VecDense
	Step(action float64) (next *mat.VecDense, reward float64, done bool)

	// ObservationSize returns the length of observation vectors
	// returned by Reset
	ObservationSize() int
	ActionBounds() r1.Interval
}

// UniformStarter samples starting states uniformly from a hyper-cube,
// where each dimension of the cube is defined by an interval
type UniformStarter struct {
	features int
	rand     *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter which samples starting
// states from the intervals bounds
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	source := rand.NewSource(seed)
	return UniformStarter{
		features: len(bounds),
		rand:     distmv.NewUniform(bounds, source),
	}
}

// Start samples and returns a starting state
func (u UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.features, u.rand.Rand(nil))
}
