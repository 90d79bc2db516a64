package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/force"
)

// layout maps the flat combined state vector: every particle's
// position and velocity first, then each enabled ODE force's auxiliary
// variables in registration order. The mapping is a pure function of
// the particle set and the enabled module set, so rebuilding it for the
// same configuration always yields the same layout.
type layout struct {
	n         int // particles
	odeForces []force.ODEForce
	offsets   []int // aux offset per ODE force, relative to auxBase
	auxBase   int
	dim       int

	// aux is the canonical home of auxiliary values between steps;
	// particle state lives in the body store.
	aux []float64
}

func buildLayout(st *body.Store, reg *force.Registry) (*layout, error) {
	lay := &layout{
		n:       st.Len(),
		auxBase: st.Len() * 6,
	}

	off := 0
	for _, f := range reg.Enabled() {
		ode, ok := f.(force.ODEForce)
		if !ok {
			continue
		}
		lay.odeForces = append(lay.odeForces, ode)
		lay.offsets = append(lay.offsets, off)
		off += len(ode.AuxSlots(st))
	}
	lay.dim = lay.auxBase + off
	lay.aux = make([]float64, off)

	// Restore stashed values where present (enable/disable round-trips
	// and layout rebuilds must not lose auxiliary state), otherwise ask
	// the module for initial values.
	for fi, ode := range lay.odeForces {
		seg := lay.auxSegment(fi)
		if saved := reg.SavedAux(ode.Name()); len(saved) == len(seg) {
			copy(seg, saved)
			continue
		}
		if err := ode.AuxInit(st, seg); err != nil {
			return nil, fmt.Errorf("sim: initializing %q state: %w", ode.Name(), err)
		}
	}

	return lay, nil
}

func (l *layout) auxSegment(fi int) []float64 {
	start := l.offsets[fi]
	var end int
	if fi+1 < len(l.offsets) {
		end = l.offsets[fi+1]
	} else {
		end = len(l.aux)
	}
	return l.aux[start:end]
}

// stash copies auxiliary values back into the registry before the
// layout is torn down.
func (l *layout) stash(reg *force.Registry) {
	for fi, ode := range l.odeForces {
		reg.SaveAux(ode.Name(), l.auxSegment(fi))
	}
}

// pack assembles the combined vector from the store and the auxiliary
// home.
func (l *layout) pack(st *body.Store) dynamo.State {
	x := make(dynamo.State, l.dim)
	for i, p := range st.Particles() {
		base := i * 6
		x[base+0], x[base+1], x[base+2] = p.Pos.X(), p.Pos.Y(), p.Pos.Z()
		x[base+3], x[base+4], x[base+5] = p.Vel.X(), p.Vel.Y(), p.Vel.Z()
	}
	copy(x[l.auxBase:], l.aux)
	return x
}

// unpack commits an accepted state back to the store and the auxiliary
// home.
func (l *layout) unpack(x dynamo.State, st *body.Store) {
	for i := 0; i < l.n; i++ {
		base := i * 6
		p, _ := st.Particle(i)
		p.Pos = mgl64.Vec3{x[base+0], x[base+1], x[base+2]}
		p.Vel = mgl64.Vec3{x[base+3], x[base+4], x[base+5]}
		st.SetParticle(i, p)
	}
	copy(l.aux, x[l.auxBase:])
}

// odeSystem adapts the particle store plus force registry into the
// single flat ODE the integrator sees: position derivatives are
// velocities, velocity derivatives come from the force registry, and
// auxiliary derivatives come from each owning module.
type odeSystem struct {
	sim *Simulation
	lay *layout
}

func (s *odeSystem) Dim() int { return s.lay.dim }

func (s *odeSystem) Derive(x dynamo.State, t float64) dynamo.State {
	lay := s.lay
	n := lay.n

	bodies := make([]body.Particle, n)
	for i, p := range s.sim.store.Particles() {
		base := i * 6
		p.Pos = mgl64.Vec3{x[base+0], x[base+1], x[base+2]}
		p.Vel = mgl64.Vec3{x[base+3], x[base+4], x[base+5]}
		bodies[i] = p
	}

	snap := &force.Snapshot{T: t, G: s.sim.cfg.G, Bodies: bodies, Store: s.sim.store}

	auxOf := func(f force.Force) []float64 {
		for fi, ode := range lay.odeForces {
			if ode.Name() == f.Name() {
				start := lay.auxBase + lay.offsets[fi]
				return x[start : start+len(lay.auxSegment(fi))]
			}
		}
		return nil
	}

	acc := make([]mgl64.Vec3, n)
	s.sim.forces.Accelerations(snap, auxOf, acc)

	dx := make(dynamo.State, lay.dim)
	for i := 0; i < n; i++ {
		base := i * 6
		dx[base+0], dx[base+1], dx[base+2] = x[base+3], x[base+4], x[base+5]
		dx[base+3], dx[base+4], dx[base+5] = acc[i].X(), acc[i].Y(), acc[i].Z()
	}

	for fi, ode := range lay.odeForces {
		start := lay.auxBase + lay.offsets[fi]
		end := start + len(lay.auxSegment(fi))
		ode.AuxDerive(snap, x[start:end], dx[start:end])
	}

	return dx
}
