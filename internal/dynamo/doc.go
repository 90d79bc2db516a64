// Package dynamo provides the core primitives for adaptive ODE integration.
//
// The package defines the vocabulary shared by the particle store, the
// force framework and the integrators:
//
//   - [State]: flat vector holding every integrated quantity
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step integrator interface
//   - [AdaptiveIntegrator]: step attempt with accept/reject and step-size control
//
// # Example
//
//	integ := integrators.NewBS()
//	x, dtNext, ok, err := integ.TryStep(sys, x, t, dt, 1e-9)
//
// # Thread Safety
//
// State vectors and systems are NOT thread-safe. There is exactly one
// logical thread of control during an integration; [ParallelFor] is
// only used for order-insensitive partial sums inside a single force
// evaluation.
package dynamo
