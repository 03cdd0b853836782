// Package solver implements constructors for the Gorgonia solvers
// used to update network weights
package solver

import (
	G "gorgonia.org/gorgonia"
)

// NewAdam returns a new Adam solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64) G.Solver {
	return G.NewAdamSolver(
		G.WithLearnRate(stepSize),
		G.WithEps(epsilon),
		G.WithBeta1(beta1),
		G.WithBeta2(beta2),
	)
}

// NewDefaultAdam returns a new Adam solver with default values for all
// hyperparameters except the step size
func NewDefaultAdam(stepSize float64) G.Solver {
	return NewAdam(stepSize, 1e-8, 0.9, 0.999)
}

// NewVanilla returns a new vanilla gradient descent solver
func NewVanilla(stepSize float64) G.Solver {
	return G.NewVanillaSolver(
		G.WithLearnRate(stepSize),
	)
}
