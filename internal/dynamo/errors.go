package dynamo

import "errors"

// Domain errors for the simulation core.
var (
	// ErrInvalidIndex indicates a particle index outside the store.
	ErrInvalidIndex = errors.New("dynamo: particle index out of range")

	// ErrTypeMismatch indicates a parameter read with the wrong shape.
	ErrTypeMismatch = errors.New("dynamo: parameter type mismatch")

	// ErrNotFound indicates a missing parameter key.
	ErrNotFound = errors.New("dynamo: parameter not found")

	// ErrNonConvergence indicates the step-size controller could not
	// find an acceptable step within the retry budget.
	ErrNonConvergence = errors.New("dynamo: integrator failed to converge")

	// ErrInvalidState indicates NaN or Inf in the state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive timestep fell below the minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrSetupLocked indicates a setup-phase mutation after integration began.
	ErrSetupLocked = errors.New("dynamo: setup locked once integration has begun")
)

// StepError wraps an integration error with the time and sub-step at
// which it occurred. The simulation state is left at the last accepted
// step.
type StepError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return e.Wrapped.Error()
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
