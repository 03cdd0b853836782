// Package gae implements generalized advantage estimation - GAE(λ) -
// for variable-length episodes
package gae

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Estimator computes discounted rewards-to-go and GAE(λ) advantage
// estimates for episodes, following https://arxiv.org/abs/1506.02438.
// This implementation is adapted from:
//
// https://github.com/openai/spinningup/tree/master/spinup/algos/tf1/vpg
//
// An Estimator precomputes tables of discount powers ℽ^k and (ℽλ)^k
// for k = 0, 1, ..., maxSteps-1 once at construction. The tables are
// read-only afterwards, so a single Estimator can serve every episode
// of a training run as long as no episode exceeds maxSteps transitions.
type Estimator struct {
	maxSteps int
	gamma    float64
	lambda   float64

	gammaPows       []float64 // ℽ^k
	gammaLambdaPows []float64 // (ℽλ)^k
}

// New returns a new Estimator for episodes of at most maxSteps
// transitions with discount factor gamma and GAE parameter lambda
func New(maxSteps int, gamma, lambda float64) (*Estimator, error) {
	if maxSteps <= 0 {
		return nil, fmt.Errorf("new: maxSteps must be positive \n\thave(%v)",
			maxSteps)
	}
	if gamma <= 0 || gamma >= 1 {
		return nil, fmt.Errorf("new: gamma must be in (0, 1) \n\thave(%v)",
			gamma)
	}
	if lambda <= 0 || lambda >= 1 {
		return nil, fmt.Errorf("new: lambda must be in (0, 1) \n\thave(%v)",
			lambda)
	}

	gammaPows := make([]float64, maxSteps)
	gammaLambdaPows := make([]float64, maxSteps)
	gammaPows[0] = 1.0
	gammaLambdaPows[0] = 1.0
	for k := 1; k < maxSteps; k++ {
		gammaPows[k] = gammaPows[k-1] * gamma
		gammaLambdaPows[k] = gammaLambdaPows[k-1] * (gamma * lambda)
	}

	return &Estimator{
		maxSteps:        maxSteps,
		gamma:           gamma,
		lambda:          lambda,
		gammaPows:       gammaPows,
		gammaLambdaPows: gammaLambdaPows,
	}, nil
}

// MaxSteps returns the maximum episode length the Estimator supports
func (e *Estimator) MaxSteps() int {
	return e.maxSteps
}

// Gamma returns the discount factor ℽ
func (e *Estimator) Gamma() float64 {
	return e.gamma
}

// RewardsToGo computes the discounted reward-to-go target for each
// step of an episode's reward sequence:
//
//	r2g[i] = rewards[i] + ℽ rewards[i+1] + ℽ^2 rewards[i+2] + ...
func (e *Estimator) RewardsToGo(rewards []float64) []float64 {
	if len(rewards) > e.maxSteps {
		panic(fmt.Sprintf("rewardsToGo: episode length exceeds maximum "+
			"\n\twant(≤%v) \n\thave(%v)", e.maxSteps, len(rewards)))
	}
	return DiscountedSum(rewards, e.gammaPows)
}

// Advantages computes the GAE(λ) advantage estimate for each step of
// an episode. The rewards argument holds the n rewards of the episode,
// and values holds n+1 state-value estimates, where values[n] is the
// bootstrap value for the state following the final recorded
// transition: 0 for a terminal state, and v(s) otherwise.
//
// Advantages first forms the one-step TD residuals
//
//	δ[i] = rewards[i] + ℽ values[i+1] - values[i]
//
// and then discounts the residual stream by (ℽλ)^k. This is the
// forward-view telescoped form of the usual backward recursion
// A[i] = δ[i] + ℽλ A[i+1]; the two are equivalent.
func (e *Estimator) Advantages(rewards, values []float64) []float64 {
	n := len(rewards)
	if len(values) != n+1 {
		panic(fmt.Sprintf("advantages: illegal value sequence length "+
			"\n\twant(%v) \n\thave(%v)", n+1, len(values)))
	}
	if n > e.maxSteps {
		panic(fmt.Sprintf("advantages: episode length exceeds maximum "+
			"\n\twant(≤%v) \n\thave(%v)", e.maxSteps, n))
	}

	deltas := make([]float64, n)
	for i := 0; i < n; i++ {
		deltas[i] = rewards[i] + e.gamma*values[i+1] - values[i]
	}

	return DiscountedSum(deltas, e.gammaLambdaPows)
}

// DiscountedSum computes the reverse discounted cumulative sum of a
// sequence under a table of discount powers. Given a sequence
// v = [x0 x1 x2 ... xN] and pows[k] = d^k, DiscountedSum returns:
//
// [
//	x0 + d x1 + d^2 x2 + ... + d^N xN
//	x1 + d x2 + ... + d^(N-1) xN
//	x2 + d x3 + ... + d^(N-2) xN
// ...
//	xN
// ]
//
// Each entry is computed independently as an inner product against the
// power table rather than by a running backward accumulator. This is
// quadratic in the sequence length but exact, and episode lengths are
// bounded by the step cap. The power table must be at least as long as
// the sequence.
func DiscountedSum(seq, pows []float64) []float64 {
	n := len(seq)
	if len(pows) < n {
		panic(fmt.Sprintf("discountedSum: discount power table too short "+
			"\n\twant(≥%v) \n\thave(%v)", n, len(pows)))
	}

	sums := make([]float64, n)
	for i := 0; i < n; i++ {
		sums[i] = floats.Dot(seq[i:], pows[:n-i])
	}
	return sums
}
