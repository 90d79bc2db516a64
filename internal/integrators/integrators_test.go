package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// oscillator is the harmonic oscillator x'' = -x, whose solution from
// (1, 0) is (cos t, -sin t).
type oscillator struct{}

func (o *oscillator) Dim() int { return 2 }
func (o *oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func oscillatorError(x dynamo.State, t float64) float64 {
	return math.Max(math.Abs(x[0]-math.Cos(t)), math.Abs(x[1]+math.Sin(t)))
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	sys := &oscillator{}

	x := dynamo.State{1, 0}
	dt := 0.01
	steps := int(2 * math.Pi / dt)
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	if err := oscillatorError(x, float64(steps)*dt); err > 1e-8 {
		t.Errorf("RK4 error after one period: %e", err)
	}
}

func TestRK45AcceptsReasonableStep(t *testing.T) {
	integ := NewRK45()
	sys := &oscillator{}

	xNew, dtNext, accepted, err := integ.TryStep(sys, dynamo.State{1, 0}, 0, 0.1, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted {
		t.Fatal("expected acceptance for dt=0.1 at tol=1e-6")
	}
	if dtNext <= 0 {
		t.Errorf("non-positive dtNext %v", dtNext)
	}
	if e := oscillatorError(xNew, 0.1); e > 1e-7 {
		t.Errorf("accepted step error %e exceeds tolerance", e)
	}
}

func TestRK45RejectsOversizedStep(t *testing.T) {
	integ := NewRK45()
	sys := &oscillator{}

	x := dynamo.State{1, 0}
	xNew, dtNext, accepted, err := integ.TryStep(sys, x, 0, 10, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatal("expected rejection for dt=10 at tol=1e-12")
	}
	if dtNext >= 10 {
		t.Errorf("rejection must recommend a smaller step, got %v", dtNext)
	}
	for i := range x {
		if xNew[i] != x[i] {
			t.Error("rejected step must return the input state unchanged")
		}
	}
}

func TestBSSingleStepAccuracy(t *testing.T) {
	integ := NewBS()
	sys := &oscillator{}

	xNew, _, accepted, err := integ.TryStep(sys, dynamo.State{1, 0}, 0, 1.0, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted {
		t.Fatal("expected BS to accept dt=1 at tol=1e-12")
	}
	if e := oscillatorError(xNew, 1.0); e > 1e-10 {
		t.Errorf("BS single-step error %e", e)
	}
}

func TestBSTakesLargerStepsThanRK45(t *testing.T) {
	sys := &oscillator{}
	tol := 1e-10

	advance := func(integ dynamo.AdaptiveIntegrator) int {
		x := dynamo.State{1, 0}
		tNow, dt := 0.0, 0.01
		steps := 0
		for tNow < 10 {
			if tNow+dt > 10 {
				dt = 10 - tNow
			}
			xNew, dtNext, accepted, err := integ.TryStep(sys, x, tNow, dt, tol)
			if err != nil {
				t.Fatal(err)
			}
			if accepted {
				x = xNew
				tNow += dt
				steps++
			}
			dt = dtNext
		}
		if e := oscillatorError(x, 10); e > 1e-7 {
			t.Errorf("error %e after adaptive integration", e)
		}
		return steps
	}

	bsSteps := advance(NewBS())
	rkSteps := advance(NewRK45())
	if bsSteps >= rkSteps {
		t.Errorf("expected the extrapolation scheme to need fewer steps: bs=%d rk45=%d", bsSteps, rkSteps)
	}
}

func TestBSRejectionShrinksStep(t *testing.T) {
	integ := NewBS()
	sys := &oscillator{}

	_, dtNext, accepted, err := integ.TryStep(sys, dynamo.State{1, 0}, 0, 50, 1e-14)
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatal("expected rejection for dt=50 at tol=1e-14")
	}
	if dtNext >= 50 {
		t.Errorf("rejection must shrink the step, got %v", dtNext)
	}
}

func TestRegistry(t *testing.T) {
	if _, err := New("bs"); err != nil {
		t.Errorf("bs should be registered: %v", err)
	}
	if _, err := New("rk45"); err != nil {
		t.Errorf("rk45 should be registered: %v", err)
	}
	if _, err := New("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	names := Names()
	if len(names) != 2 || names[0] != "bs" || names[1] != "rk45" {
		t.Errorf("unexpected names %v", names)
	}
}
