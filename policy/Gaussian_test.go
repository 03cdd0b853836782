package policy

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestLogDensityMatchesGaussian verifies that the closed-form log
// density equals the Gaussian log probability density for the same
// mean and standard deviation
func TestLogDensityMatchesGaussian(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		mean := rng.NormFloat64() * 5
		logStd := rng.NormFloat64()
		action := mean + math.Exp(logStd)*rng.NormFloat64()

		got := LogDensity(action, mean, logStd)
		want := distuv.Normal{Mu: mean, Sigma: math.Exp(logStd)}.
			LogProb(action)

		diff := math.Abs(got - want)
		if diff > 1e-6*math.Max(1, math.Abs(want)) {
			t.Errorf("action %v mean %v logStd %v: expected %v but got %v",
				action, mean, logStd, want, got)
		}
	}
}

// TestLogDensityClosedForm spot-checks the density at the mean of a
// standard normal, where the log density is -log(√(2π))
func TestLogDensityClosedForm(t *testing.T) {
	got := LogDensity(0, 0, 0)
	want := -math.Log(math.Sqrt(2 * math.Pi))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v but got %v", want, got)
	}
}
