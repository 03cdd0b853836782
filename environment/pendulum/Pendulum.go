// Package pendulum implements the pendulum swing-up classic control
// environment
package pendulum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/nlawrance/swingup/environment"
)

// physical constants
const (
	AngleBound  float64 = math.Pi // +/- Angle bounds
	SpeedBound  float64 = 8.0     // +/- Speed bounds
	TorqueBound float64 = 2.0     // +/- Torque bounds

	dt      float64 = 0.05
	gravity float64 = 9.8
	mass    float64 = 1.0
	length  float64 = 1.0

	// ObservationDims is the length of state observations
	ObservationDims int = 2
)

// Pendulum implements the pendulum swing-up environment. A pendulum is
// attached to a fixed base, and an agent applies torque at the base to
// swing the pendulum. The swinging torque is underpowered, so the
// pendulum must be rocked back and forth, using momentum to gradually
// climb until it can point straight up.
//
// State observations are 2-dimensional, consisting of the angle of the
// pendulum measured from the positive y-axis and its angular velocity.
// Angles are normalized to stay within [-π, π] and angular velocities
// are clipped to [-SpeedBound, SpeedBound].
//
// Actions are continuous and scalar, determining the torque applied at
// the fixed base. Actions outside [-TorqueBound, TorqueBound] are
// clipped to stay within these bounds.
//
// The reward on each step is the cosine of the pendulum angle, so the
// agent earns 1.0 per step while the pendulum points straight up. The
// environment never signals termination; episodes end only by the
// caller's step cap.
type Pendulum struct {
	environment.Starter
	angleBounds  r1.Interval
	speedBounds  r1.Interval
	torqueBounds r1.Interval
	state        *mat.VecDense
}

// New creates and returns a new Pendulum whose starting states are
// sampled from starter
func New(starter environment.Starter) (*Pendulum, error) {
	p := &Pendulum{
		Starter:      starter,
		angleBounds:  r1.Interval{Min: -AngleBound, Max: AngleBound},
		speedBounds:  r1.Interval{Min: -SpeedBound, Max: SpeedBound},
		torqueBounds: r1.Interval{Min: -TorqueBound, Max: TorqueBound},
	}

	state := starter.Start()
	if err := p.validate(state); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	p.state = state

	return p, nil
}

// Reset resets the environment and returns a starting state drawn from
// the Starter
func (p *Pendulum) Reset() *mat.VecDense {
	state := p.Start()
	if err := p.validate(state); err != nil {
		panic(fmt.Sprintf("reset: %v", err))
	}
	p.state = state

	return mat.VecDenseCopyOf(state)
}

// Step applies torque to the pendulum's fixed base and advances the
// environment one timestep. The torque is first clipped to the legal
// torque bounds. The reward for the transition is the cosine of the
// new pendulum angle. Step never signals termination.
func (p *Pendulum) Step(action float64) (*mat.VecDense, float64, bool) {
	th, thdot := p.state.AtVec(0), p.state.AtVec(1)

	torque := clip(action, p.torqueBounds)

	newthdot := thdot + (-3*gravity/(2*length)*math.Sin(th+math.Pi)+
		3.0/(mass*math.Pow(length, 2))*torque)*dt
	newth := th + newthdot*dt

	newthdot = clip(newthdot, p.speedBounds)
	newth = normalizeAngle(newth, p.angleBounds)

	p.state = mat.NewVecDense(ObservationDims, []float64{newth, newthdot})

	return mat.VecDenseCopyOf(p.state), math.Cos(newth), false
}

// ObservationSize returns the length of observation vectors
func (p *Pendulum) ObservationSize() int {
	return ObservationDims
}

// ActionBounds returns the interval of legal torques
func (p *Pendulum) ActionBounds() r1.Interval {
	return p.torqueBounds
}

// String converts the environment to a string representation
func (p *Pendulum) String() string {
	str := "Pendulum  |  theta: %v  |  theta dot: %v"
	return fmt.Sprintf(str, p.state.AtVec(0), p.state.AtVec(1))
}

// validate ensures that the angle and angular velocity of a state are
// within the environmental limits
func (p *Pendulum) validate(obs *mat.VecDense) error {
	if obs.Len() != ObservationDims {
		return fmt.Errorf("illegal state length \n\twant(%v)\n\thave(%v)",
			ObservationDims, obs.Len())
	}

	th, thdot := obs.AtVec(0), obs.AtVec(1)
	if th < p.angleBounds.Min || th > p.angleBounds.Max {
		return fmt.Errorf("theta %v is not within bounds %v", th,
			p.angleBounds)
	}
	if thdot < p.speedBounds.Min || thdot > p.speedBounds.Max {
		return fmt.Errorf("theta dot %v is not within bounds %v", thdot,
			p.speedBounds)
	}
	return nil
}

// clip clips a value to stay within an interval
func clip(x float64, bounds r1.Interval) float64 {
	x = floats.Min([]float64{x, bounds.Max})
	return floats.Max([]float64{x, bounds.Min})
}

// normalizeAngle normalizes the pendulum angle to the appropriate
// limits
func normalizeAngle(th float64, angleBounds r1.Interval) float64 {
	if angleBounds.Max != -angleBounds.Min {
		panic("angle bounds should be centered around 0")
	}

	if th > angleBounds.Max {
		divisor := int(th / angleBounds.Max)
		return -math.Pi + th - (angleBounds.Max * float64(divisor))
	} else if th < angleBounds.Min {
		divisor := int(th / angleBounds.Min)
		return math.Pi + th - (angleBounds.Min * float64(divisor))
	}
	return th
}
