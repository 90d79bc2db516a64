// Package sim exposes the simulation driver: particle setup, force
// attachment, parameter access, and the advance-to-time loop that runs
// the adaptive integrator.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/force"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/orbit"
)

type Config struct {
	G          float64
	Dt0        float64 // initial timestep
	Tolerance  float64
	MinDt      float64
	MaxRetries int
	Integrator dynamo.AdaptiveIntegrator
}

func DefaultConfig() Config {
	return Config{
		G:          1.0,
		Dt0:        math.Pi * 1e-1,
		Tolerance:  1e-9,
		MinDt:      1e-12,
		MaxRetries: 20,
		Integrator: integrators.NewBS(),
	}
}

// Simulation owns the particle store, the force registry, the
// integrator and the simulation clock. It is not safe for concurrent
// use; there is exactly one logical thread of control.
type Simulation struct {
	cfg    Config
	store  *body.Store
	forces *force.Registry

	t       float64
	dt      float64 // adaptive step memory, survives across AdvanceTo calls
	lay     *layout
	started bool
}

func New(cfg Config) (*Simulation, error) {
	if cfg.Dt0 <= 0 {
		return nil, fmt.Errorf("sim: initial timestep must be positive, got %v", cfg.Dt0)
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("sim: tolerance must be positive, got %v", cfg.Tolerance)
	}
	if cfg.G <= 0 {
		return nil, fmt.Errorf("sim: gravitational constant must be positive, got %v", cfg.G)
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewBS()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 20
	}
	if cfg.MinDt <= 0 {
		cfg.MinDt = 1e-12
	}
	return &Simulation{
		cfg:    cfg,
		store:  body.NewStore(),
		forces: force.NewRegistry(),
		dt:     cfg.Dt0,
	}, nil
}

func (s *Simulation) T() float64        { return s.t }
func (s *Simulation) Dt() float64       { return s.dt }
func (s *Simulation) G() float64        { return s.cfg.G }
func (s *Simulation) Store() *body.Store { return s.store }

// AddParticle inserts a particle from direct Cartesian state. The
// combined state vector cannot be resized once integration has begun,
// so adding particles mid-run is an error.
func (s *Simulation) AddParticle(p body.Particle) (int, error) {
	if s.started {
		return 0, fmt.Errorf("sim: %w: cannot add particles", dynamo.ErrSetupLocked)
	}
	s.invalidateLayout()
	return s.store.Add(p)
}

// AddParticleFromOrbit inserts a particle from orbital elements
// relative to the center of mass of all previously added particles.
func (s *Simulation) AddParticleFromOrbit(mass, radius float64, el orbit.Elements) (int, error) {
	if s.started {
		return 0, fmt.Errorf("sim: %w: cannot add particles", dynamo.ErrSetupLocked)
	}
	if s.store.Len() == 0 {
		return 0, fmt.Errorf("sim: orbital elements need a reference body; add the primary first")
	}
	refPos, refVel, refMass := s.store.COM()
	mu := s.cfg.G * (mass + refMass)
	rpos, rvel, err := orbit.ToCartesian(mu, el)
	if err != nil {
		return 0, err
	}
	s.invalidateLayout()
	return s.store.Add(body.Particle{
		Mass:   mass,
		Radius: radius,
		Pos:    refPos.Add(rpos),
		Vel:    refVel.Add(rvel),
	})
}

// AttachForce registers a force module from the catalog by name.
func (s *Simulation) AttachForce(name string) error {
	f, err := force.New(name)
	if err != nil {
		return err
	}
	s.invalidateLayout()
	return s.forces.Register(s.store, f)
}

func (s *Simulation) EnableForce(name string) error {
	s.invalidateLayout()
	return s.forces.Enable(name)
}

func (s *Simulation) DisableForce(name string) error {
	s.invalidateLayout()
	return s.forces.Disable(name)
}

// invalidateLayout stashes auxiliary state and forces a deterministic
// rebuild before the next advance.
func (s *Simulation) invalidateLayout() {
	if s.lay != nil {
		s.lay.stash(s.forces)
		s.lay = nil
	}
}

func (s *Simulation) ensureLayout() error {
	if s.lay != nil {
		return nil
	}
	lay, err := buildLayout(s.store, s.forces)
	if err != nil {
		return err
	}
	s.lay = lay
	return nil
}

// Parameter passthrough.

func (s *Simulation) SetScalar(i int, key string, v float64) error { return s.store.SetScalar(i, key, v) }
func (s *Simulation) Scalar(i int, key string) (float64, error)    { return s.store.Scalar(i, key) }
func (s *Simulation) SetVec3(i int, key string, v mgl64.Vec3) error {
	return s.store.SetVec3(i, key, v)
}
func (s *Simulation) Vec3(i int, key string) (mgl64.Vec3, error) { return s.store.Vec3(i, key) }

// MoveToCOM recenters the system on its center of mass.
func (s *Simulation) MoveToCOM() { s.store.MoveToCOM() }

// AdvanceTo integrates until the simulation clock reaches target. The
// internal step size adapts freely, but the final sub-step is clipped
// so the clock lands exactly on target without corrupting the step-size
// memory. Calling with target equal to the current time is a no-op.
//
// On ErrNonConvergence or ErrInvalidState the simulation is left at the
// last accepted step, so the caller can inspect it, adjust the
// configuration and retry. ctx is checked between sub-steps only, never
// mid-step.
func (s *Simulation) AdvanceTo(ctx context.Context, target float64) error {
	if target == s.t {
		return nil
	}
	if target < s.t {
		return fmt.Errorf("sim: target time %v is before current time %v", target, s.t)
	}
	if err := s.ensureLayout(); err != nil {
		return err
	}
	s.started = true

	sys := &odeSystem{sim: s, lay: s.lay}
	x := s.lay.pack(s.store)
	step := 0

	for s.t < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dt := s.dt
		clipped := false
		if s.t+dt >= target {
			dt = target - s.t
			clipped = true
		}

		accepted := false
		for retry := 0; retry <= s.cfg.MaxRetries; retry++ {
			xNew, dtNext, ok, err := s.cfg.Integrator.TryStep(sys, x, s.t, dt, s.cfg.Tolerance)
			if err != nil {
				return &dynamo.StepError{Time: s.t, Step: step, Wrapped: err}
			}
			if ok {
				if !xNew.IsValid() {
					return &dynamo.StepError{Time: s.t, Step: step, Wrapped: dynamo.ErrInvalidState}
				}
				x = xNew
				s.t += dt
				if clipped {
					// The truncated step must not disturb the step-size
					// memory unless the controller asked for a step smaller
					// than even the truncated one.
					if dtNext < dt {
						s.dt = dtNext
					}
				} else {
					s.dt = dtNext
				}
				accepted = true
				break
			}

			// Never grow on a rejected step.
			if dtNext >= dt {
				dtNext = dt / 2
			}
			dt = dtNext
			clipped = false
			if dt < s.cfg.MinDt {
				return &dynamo.StepError{Time: s.t, Step: step, Wrapped: dynamo.ErrNonConvergence}
			}
		}
		if !accepted {
			return &dynamo.StepError{Time: s.t, Step: step, Wrapped: dynamo.ErrNonConvergence}
		}

		// Commit after every accepted sub-step so cancellation and
		// failures leave a consistent state.
		s.lay.unpack(x, s.store)
		step++
	}

	// Exact landing; guard against accumulated roundoff.
	s.t = target
	return nil
}

// OrbitOf returns the orbital elements of particle i about particle ref.
func (s *Simulation) OrbitOf(i, ref int) (orbit.Elements, error) {
	pi, err := s.store.Particle(i)
	if err != nil {
		return orbit.Elements{}, err
	}
	pr, err := s.store.Particle(ref)
	if err != nil {
		return orbit.Elements{}, err
	}
	mu := s.cfg.G * (pi.Mass + pr.Mass)
	return orbit.FromCartesian(mu, pi.Pos.Sub(pr.Pos), pi.Vel.Sub(pr.Vel))
}

// OrbitAboutCOM returns the orbital elements of particle i about the
// center of mass of the given member particles, e.g. an outer perturber
// about an inner pair.
func (s *Simulation) OrbitAboutCOM(i int, members ...int) (orbit.Elements, error) {
	pi, err := s.store.Particle(i)
	if err != nil {
		return orbit.Elements{}, err
	}
	for _, m := range members {
		if _, err := s.store.Particle(m); err != nil {
			return orbit.Elements{}, err
		}
	}
	pos, vel, mass := s.store.COM(members...)
	mu := s.cfg.G * (pi.Mass + mass)
	return orbit.FromCartesian(mu, pi.Pos.Sub(pos), pi.Vel.Sub(vel))
}

// Spin returns the current spin vector of particle i, read from the
// auxiliary state of the enabled spin-carrying force. Particles without
// spin state report a zero vector.
func (s *Simulation) Spin(i int) (mgl64.Vec3, error) {
	if _, err := s.store.Particle(i); err != nil {
		return mgl64.Vec3{}, err
	}
	if err := s.ensureLayout(); err != nil {
		return mgl64.Vec3{}, err
	}
	for fi, ode := range s.lay.odeForces {
		slots := ode.AuxSlots(s.store)
		seg := s.lay.auxSegment(fi)
		for si, slot := range slots {
			if slot.Particle == i && slot.Label == "sx" {
				return mgl64.Vec3{seg[si], seg[si+1], seg[si+2]}, nil
			}
		}
	}
	return mgl64.Vec3{}, nil
}

// Energy returns the total mechanical energy under the baseline
// gravitational potential.
func (s *Simulation) Energy() float64 {
	particles := s.store.Particles()
	ke := 0.0
	pe := 0.0
	for i, p := range particles {
		ke += 0.5 * p.Mass * p.Vel.Dot(p.Vel)
		for j := i + 1; j < len(particles); j++ {
			q := particles[j]
			r := q.Pos.Sub(p.Pos).Len()
			if r > 0 {
				pe -= s.cfg.G * p.Mass * q.Mass / r
			}
		}
	}
	return ke + pe
}

// AngularMomentum returns the total orbital angular momentum vector.
func (s *Simulation) AngularMomentum() mgl64.Vec3 {
	var L mgl64.Vec3
	for _, p := range s.store.Particles() {
		L = L.Add(p.Pos.Cross(p.Vel).Mul(p.Mass))
	}
	return L
}
