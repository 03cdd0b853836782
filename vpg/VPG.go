// Package vpg implements the Vanilla Policy Gradient algorithm with
// generalized advantage estimation for continuous, scalar actions
package vpg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nlawrance/swingup/gae"
	"github.com/nlawrance/swingup/network"
	"github.com/nlawrance/swingup/policy"
	"github.com/nlawrance/swingup/rollout"
	"github.com/nlawrance/swingup/solver"
)

// For numerical stability, the standard deviation of the advantage
// estimates is offset from 0 before normalization.
const advStdOffset float64 = 1e-8

// VPG implements the Vanilla Policy Gradient algorithm with GAE(λ)
// advantage estimation. This implementation is adapted from:
//
// https://spinningup.openai.com/en/latest/algorithms/vpg.html
// https://github.com/openai/spinningup/blob/master/spinup/algos/tf1/vpg/vpg.py
//
// The behaviour policy and the prediction value function each have a
// batch size of 1 so that they can be queried on each timestep of a
// rollout. Because batches span whole episodes and vary in length from
// epoch to epoch, the training copies of both networks are cloned
// fresh at the batch's actual size on every update, and the updated
// weights are copied back.
//
// A VPG satisfies the rollout package's Sampler and StateValuer
// interfaces, so it can be handed directly to rollout.Collect.
type VPG struct {
	behaviour    *policy.Gaussian
	policySolver G.Solver

	valueFn *network.MLP
	vVM     G.VM
	vSolver G.Solver

	estimator      *gae.Estimator
	valueGradSteps int
}

// New creates and returns a new VPG agent for states of length
// features
func New(features int, c Config, seed uint64) (*VPG, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	behaviour, err := policy.NewGaussian(
		features,
		1,
		c.PolicyLayers,
		c.PolicyBiases,
		c.PolicyActivations,
		G.GlorotN(1.0),
		c.InitLogStd,
		seed,
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour "+
			"policy: %v", err)
	}

	valueFn, err := network.NewMLP(
		features,
		1,
		G.NewGraph(),
		c.ValueFnLayers,
		c.ValueFnBiases,
		G.GlorotN(1.0),
		c.ValueFnActivations,
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create value function: %v",
			err)
	}

	estimator, err := gae.New(c.MaxSteps, c.Gamma, c.Lambda)
	if err != nil {
		return nil, fmt.Errorf("new: could not create advantage "+
			"estimator: %v", err)
	}

	return &VPG{
		behaviour:    behaviour,
		policySolver: solver.NewDefaultAdam(c.PolicyLearningRate),

		valueFn: valueFn,
		vVM:     G.NewTapeMachine(valueFn.Graph()),
		vSolver: solver.NewDefaultAdam(c.ValueLearningRate),

		estimator:      estimator,
		valueGradSteps: c.ValueGradSteps,
	}, nil
}

// SelectAction samples an action for the argument state from the
// behaviour policy, returning the action and its log probability
func (v *VPG) SelectAction(state *mat.VecDense) (float64, float64) {
	return v.behaviour.SelectAction(state)
}

// Value returns the current value function estimate for the argument
// state
func (v *VPG) Value(state *mat.VecDense) float64 {
	if err := v.valueFn.SetInput(state.RawVector().Data); err != nil {
		panic(fmt.Sprintf("value: cannot set input: %v", err))
	}
	if err := v.vVM.RunAll(); err != nil {
		panic(fmt.Sprintf("value: could not run value function VM: %v", err))
	}
	defer v.vVM.Reset()

	out := v.valueFn.Output().Data().([]float64)
	if len(out) != 1 {
		panic("value: multiple values predicted for state value")
	}
	return out[0]
}

// Estimator returns the agent's advantage estimator, which carries the
// discount tables and the per-episode step cap
func (v *VPG) Estimator() *gae.Estimator {
	return v.estimator
}

// LogStd returns the current log standard deviation of the behaviour
// policy
func (v *VPG) LogStd() float64 {
	return v.behaviour.LogStd()
}

// Update performs one policy gradient step and valueGradSteps value
// function steps using the argument batch, then discards the training
// networks after copying their updated weights into the behaviour
// policy and prediction value function.
//
// Advantages are first normalized to mean 0 and standard deviation 1
// across the whole batch. The policy loss recomputes the Gaussian log
// probability of each recorded action under the current parameters;
// the log probabilities recorded at rollout time are not reused, so
// the update is a plain policy gradient with no importance-sampling
// correction.
func (v *VPG) Update(batch *rollout.Batch) error {
	if err := v.updatePolicy(batch); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	if err := v.updateValueFn(batch); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	return nil
}

// updatePolicy performs the policy gradient step for an epoch
func (v *VPG) updatePolicy(batch *rollout.Batch) error {
	n := batch.Transitions

	// Advantage normalization
	adv := make([]float64, n)
	copy(adv, batch.Advantages)
	mean := stat.Mean(adv, nil)
	std := stat.StdDev(adv, nil) + advStdOffset
	for i := range adv {
		adv[i] = (adv[i] - mean) / std
	}

	trainPolicy, err := v.behaviour.CloneWithBatch(n)
	if err != nil {
		return fmt.Errorf("could not clone policy: %v", err)
	}
	g := trainPolicy.Network().Graph()

	advantages := G.NewVector(
		g,
		tensor.Float64,
		G.WithName("advantages"),
		G.WithShape(n),
	)

	policyLoss := G.Must(G.HadamardProd(trainPolicy.LogPdfNode(), advantages))
	policyLoss = G.Must(G.Mean(policyLoss))
	policyLoss = G.Must(G.Neg(policyLoss))

	if _, err := G.Grad(policyLoss, trainPolicy.Learnables()...); err != nil {
		return fmt.Errorf("could not construct policy gradient: %v", err)
	}

	vm := G.NewTapeMachine(g,
		G.BindDualValues(trainPolicy.Learnables()...))
	defer vm.Close()

	if _, err := trainPolicy.LogPdfOf(batch.States, batch.Actions); err != nil {
		return fmt.Errorf("could not set policy inputs: %v", err)
	}
	advTensor := tensor.NewDense(
		tensor.Float64,
		[]int{n},
		tensor.WithBacking(adv),
	)
	if err := G.Let(advantages, advTensor); err != nil {
		return fmt.Errorf("could not set advantages: %v", err)
	}

	if err := vm.RunAll(); err != nil {
		return fmt.Errorf("could not run policy update: %v", err)
	}
	if err := v.policySolver.Step(trainPolicy.Model()); err != nil {
		return fmt.Errorf("could not step policy solver: %v", err)
	}
	vm.Reset()

	return v.behaviour.Set(trainPolicy)
}

// updateValueFn performs the value function regression steps for an
// epoch, fitting the value network to the batch's reward-to-go targets
func (v *VPG) updateValueFn(batch *rollout.Batch) error {
	n := batch.Transitions

	trainValueFn, err := v.valueFn.CloneWithBatch(n)
	if err != nil {
		return fmt.Errorf("could not clone value function: %v", err)
	}
	g := trainValueFn.Graph()

	targets := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("value targets"),
		G.WithShape(n, 1),
	)

	valueLoss := G.Must(G.Sub(trainValueFn.Prediction(), targets))
	valueLoss = G.Must(G.Square(valueLoss))
	valueLoss = G.Must(G.Mean(valueLoss))

	if _, err := G.Grad(valueLoss, trainValueFn.Learnables()...); err != nil {
		return fmt.Errorf("could not construct value gradient: %v", err)
	}

	vm := G.NewTapeMachine(g,
		G.BindDualValues(trainValueFn.Learnables()...))
	defer vm.Close()

	for i := 0; i < v.valueGradSteps; i++ {
		if err := trainValueFn.SetInput(batch.States); err != nil {
			return fmt.Errorf("could not set value function inputs: %v", err)
		}
		targetsTensor := tensor.NewDense(
			tensor.Float64,
			[]int{n, 1},
			tensor.WithBacking(batch.Returns),
		)
		if err := G.Let(targets, targetsTensor); err != nil {
			return fmt.Errorf("could not set value targets: %v", err)
		}

		if err := vm.RunAll(); err != nil {
			return fmt.Errorf("could not run value update: %v", err)
		}
		if err := v.vSolver.Step(trainValueFn.Model()); err != nil {
			return fmt.Errorf("could not step value solver: %v", err)
		}
		vm.Reset()
	}

	return v.valueFn.Set(trainValueFn)
}
