// Package integrators implements the numerical schemes that advance
// the combined state vector: a fixed-step RK4 reference scheme, an
// embedded Dormand-Prince RK45, and the high-order Bulirsch-Stoer
// extrapolation scheme used for stiff, highly eccentric orbits.
package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)

	k1 := sys.Derive(x, t)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt/2*k1[i]
	}
	k2 := sys.Derive(x2, t+dt/2)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt/2*k2[i]
	}
	k3 := sys.Derive(x3, t+dt/2)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*k3[i]
	}
	k4 := sys.Derive(x4, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return xNew
}
