package pendulum

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/nlawrance/swingup/environment"
)

func newTestPendulum(t *testing.T, seed uint64) *Pendulum {
	t.Helper()
	angle := r1.Interval{Min: math.Pi - 0.1, Max: math.Pi}
	speed := r1.Interval{Min: -0.01, Max: 0.01}
	starter := environment.NewUniformStarter([]r1.Interval{angle, speed},
		seed)

	p, err := New(starter)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResetSamplesFromStarter(t *testing.T) {
	p := newTestPendulum(t, 11)

	for i := 0; i < 10; i++ {
		state := p.Reset()
		if state.Len() != ObservationDims {
			t.Fatalf("expected state length %d but got %d", ObservationDims,
				state.Len())
		}
		th, thdot := state.AtVec(0), state.AtVec(1)
		if th < math.Pi-0.1 || th > math.Pi {
			t.Errorf("start angle %v outside start interval", th)
		}
		if thdot < -0.01 || thdot > 0.01 {
			t.Errorf("start speed %v outside start interval", thdot)
		}
	}
}

func TestStepKeepsStateWithinBounds(t *testing.T) {
	p := newTestPendulum(t, 11)
	rng := rand.New(rand.NewSource(42))

	p.Reset()
	for i := 0; i < 1000; i++ {
		// Sample actions well outside the torque bounds to exercise
		// clipping
		action := rng.NormFloat64() * 10
		next, reward, done := p.Step(action)

		if done {
			t.Fatal("pendulum should never signal termination")
		}
		th, thdot := next.AtVec(0), next.AtVec(1)
		if th < -AngleBound || th > AngleBound {
			t.Fatalf("step %d: angle %v outside bounds", i, th)
		}
		if thdot < -SpeedBound || thdot > SpeedBound {
			t.Fatalf("step %d: speed %v outside bounds", i, thdot)
		}
		if reward < -1 || reward > 1 {
			t.Fatalf("step %d: reward %v outside [-1, 1]", i, reward)
		}
		if reward != math.Cos(th) {
			t.Fatalf("step %d: expected reward cos(theta) = %v but got %v",
				i, math.Cos(th), reward)
		}
	}
}

func TestStepIsDeterministic(t *testing.T) {
	p1 := newTestPendulum(t, 7)
	p2 := newTestPendulum(t, 7)

	p1.Reset()
	p2.Reset()
	for i := 0; i < 50; i++ {
		action := math.Sin(float64(i))
		s1, rew1, _ := p1.Step(action)
		s2, rew2, _ := p2.Step(action)

		if rew1 != rew2 || s1.AtVec(0) != s2.AtVec(0) ||
			s1.AtVec(1) != s2.AtVec(1) {
			t.Fatalf("step %d: identical seeds and actions diverged", i)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	bounds := r1.Interval{Min: -math.Pi, Max: math.Pi}

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{math.Pi + 0.5, -math.Pi + 0.5},
		{-math.Pi - 0.5, math.Pi - 0.5},
	}
	for _, test := range tests {
		got := normalizeAngle(test.in, bounds)
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("normalizeAngle(%v): expected %v but got %v", test.in,
				test.want, got)
		}
	}
}
