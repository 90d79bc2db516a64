// Package body holds the physical state of a simulation: an ordered
// collection of particles plus a typed, per-particle parameter table
// used by force modules for physical constants.
package body

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Particle is a point mass with a physical radius. A particle's index
// in the store is stable for the lifetime of the simulation.
type Particle struct {
	Mass   float64
	Radius float64
	Pos    mgl64.Vec3
	Vel    mgl64.Vec3
}

type Store struct {
	particles []Particle
	params    []table
	schema    map[string]Kind
}

func NewStore() *Store {
	return &Store{
		particles: make([]Particle, 0),
		params:    make([]table, 0),
		schema:    make(map[string]Kind),
	}
}

// Add appends a particle and returns its index. Non-finite or negative
// mass/radius fail fast; there is no silent clamping.
func (s *Store) Add(p Particle) (int, error) {
	if p.Mass < 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
		return 0, fmt.Errorf("body: invalid mass %v", p.Mass)
	}
	if p.Radius < 0 || math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) {
		return 0, fmt.Errorf("body: invalid radius %v", p.Radius)
	}
	s.particles = append(s.particles, p)
	s.params = append(s.params, table{})
	return len(s.particles) - 1, nil
}

func (s *Store) Len() int { return len(s.particles) }

func (s *Store) Particle(i int) (Particle, error) {
	if i < 0 || i >= len(s.particles) {
		return Particle{}, fmt.Errorf("body: %w: %d of %d", dynamo.ErrInvalidIndex, i, len(s.particles))
	}
	return s.particles[i], nil
}

// SetParticle overwrites the particle at index i. Used by the
// integrator write-back; validation matches Add.
func (s *Store) SetParticle(i int, p Particle) error {
	if i < 0 || i >= len(s.particles) {
		return fmt.Errorf("body: %w: %d of %d", dynamo.ErrInvalidIndex, i, len(s.particles))
	}
	s.particles[i] = p
	return nil
}

// Particles returns the backing slice. Callers must treat it as
// read-only; it is exposed for force evaluation hot loops.
func (s *Store) Particles() []Particle { return s.particles }

// COM returns the center of mass and momentum-weighted mean velocity of
// the given particle indices, or of all particles when none are given.
func (s *Store) COM(indices ...int) (pos, vel mgl64.Vec3, mass float64) {
	if len(indices) == 0 {
		indices = make([]int, len(s.particles))
		for i := range indices {
			indices[i] = i
		}
	}
	for _, i := range indices {
		p := s.particles[i]
		pos = pos.Add(p.Pos.Mul(p.Mass))
		vel = vel.Add(p.Vel.Mul(p.Mass))
		mass += p.Mass
	}
	if mass > 0 {
		pos = pos.Mul(1 / mass)
		vel = vel.Mul(1 / mass)
	}
	return pos, vel, mass
}

// MoveToCOM shifts all particles so the center of mass sits at the
// origin with zero net momentum.
func (s *Store) MoveToCOM() {
	pos, vel, mass := s.COM()
	if mass == 0 {
		return
	}
	for i := range s.particles {
		s.particles[i].Pos = s.particles[i].Pos.Sub(pos)
		s.particles[i].Vel = s.particles[i].Vel.Sub(vel)
	}
}
