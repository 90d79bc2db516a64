package dynamo

import "math"

// State is the flat combined state vector: every particle's position
// and velocity followed by every force-owned auxiliary variable, in a
// layout fixed when integration begins.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous-or-not first-order ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Integrator advances a state by a fixed step.
type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator attempts a step of size dt against a local error
// tolerance. accepted reports whether the error estimate passed; dtNext
// is the recommended size for the next attempt (smaller than dt after a
// rejection, possibly larger after an acceptance). The caller owns the
// retry loop and the step-size memory.
type AdaptiveIntegrator interface {
	Integrator
	TryStep(sys System, x State, t, dt, tol float64) (xNew State, dtNext float64, accepted bool, err error)
}
