// Package rollout implements on-policy trajectory collection: rolling
// a policy through episodes of an environment and aggregating
// variable-length episodes into training batches
package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/nlawrance/swingup/environment"
	"github.com/nlawrance/swingup/gae"
)

// Sampler selects a stochastic action for a state, returning the
// action and its log probability under the distribution it was
// sampled from
type Sampler interface {
	SelectAction(state *mat.VecDense) (action, logProb float64)
}

// StateValuer estimates the expected return from a state
type StateValuer interface {
	Value(state *mat.VecDense) float64
}

// Trajectory holds the data recorded over a single episode. States is
// the row-major flattening of a (Steps, ObsSize) matrix; Actions,
// LogProbs, and Rewards each hold Steps entries. Values holds
// Steps + 1 entries, where the final entry is the bootstrap value of
// the state following the last recorded transition: it is exactly 0,
// since both environment-signaled termination and truncation at the
// step cap are treated as terminal.
type Trajectory struct {
	ObsSize  int
	Steps    int
	States   []float64
	Actions  []float64
	LogProbs []float64
	Rewards  []float64
	Values   []float64
}

// TotalReward returns the undiscounted sum of rewards of the episode
func (t *Trajectory) TotalReward() float64 {
	return floats.Sum(t.Rewards)
}

// Episode drives env through a single episode of at most maxSteps
// transitions under the argument policy, recording the state, action,
// log probability, reward, and state-value estimate of every step.
//
// The episode ends early when the environment signals termination, in
// which case the terminating transition's reward is recorded and the
// post-terminal state is not. Buffers are sized to the number of steps
// actually taken, with no padding.
func Episode(env environment.Environment, policy Sampler,
	critic StateValuer, maxSteps int) *Trajectory {
	obsSize := env.ObservationSize()
	traj := &Trajectory{
		ObsSize:  obsSize,
		States:   make([]float64, 0, maxSteps*obsSize),
		Actions:  make([]float64, 0, maxSteps),
		LogProbs: make([]float64, 0, maxSteps),
		Rewards:  make([]float64, 0, maxSteps),
		Values:   make([]float64, 0, maxSteps+1),
	}

	state := env.Reset()
	for step := 0; step < maxSteps; step++ {
		traj.States = append(traj.States, state.RawVector().Data...)

		action, logProb := policy.SelectAction(state)
		traj.Actions = append(traj.Actions, action)
		traj.LogProbs = append(traj.LogProbs, logProb)
		traj.Values = append(traj.Values, critic.Value(state))

		next, reward, done := env.Step(action)
		traj.Rewards = append(traj.Rewards, reward)
		traj.Steps++

		if done {
			break
		}
		state = next
	}

	// Bootstrap value for the absent state after termination or
	// truncation. The critic is never queried for this entry.
	traj.Values = append(traj.Values, 0.0)

	return traj
}

// Batch holds the transitions of one or more complete episodes,
// concatenated along the transition axis, together with their
// reward-to-go targets and advantage estimates. A Batch is owned by a
// single training epoch and discarded afterwards.
type Batch struct {
	ObsSize     int
	Transitions int
	Episodes    int

	States     []float64
	Actions    []float64
	LogProbs   []float64
	Returns    []float64
	Advantages []float64

	// MeanEpisodeReward is the mean undiscounted per-episode total
	// reward across the batch's episodes, used for monitoring
	MeanEpisodeReward float64
}

// Collect runs episodes until at least minSize transitions have been
// gathered, computing each episode's reward-to-go targets and GAE(λ)
// advantage estimates as it completes. Episodes are never split:
// the batch may overshoot minSize by at most one episode's length.
func Collect(env environment.Environment, policy Sampler,
	critic StateValuer, est *gae.Estimator, minSize int) (*Batch, error) {
	if minSize <= 0 {
		return nil, fmt.Errorf("collect: minSize must be positive "+
			"\n\thave(%v)", minSize)
	}

	obsSize := env.ObservationSize()
	capacity := minSize + est.MaxSteps()
	batch := &Batch{
		ObsSize:    obsSize,
		States:     make([]float64, 0, capacity*obsSize),
		Actions:    make([]float64, 0, capacity),
		LogProbs:   make([]float64, 0, capacity),
		Returns:    make([]float64, 0, capacity),
		Advantages: make([]float64, 0, capacity),
	}

	var totalReward float64
	for batch.Transitions < minSize {
		traj := Episode(env, policy, critic, est.MaxSteps())

		batch.States = append(batch.States, traj.States...)
		batch.Actions = append(batch.Actions, traj.Actions...)
		batch.LogProbs = append(batch.LogProbs, traj.LogProbs...)
		batch.Returns = append(batch.Returns,
			est.RewardsToGo(traj.Rewards)...)
		batch.Advantages = append(batch.Advantages,
			est.Advantages(traj.Rewards, traj.Values)...)

		batch.Transitions += traj.Steps
		batch.Episodes++
		totalReward += traj.TotalReward()
	}

	batch.MeanEpisodeReward = totalReward / float64(batch.Episodes)

	return batch, nil
}
