// Package force implements the pluggable force/effect framework: an
// ordered registry of modules that contribute accelerations and, for
// modules carrying their own differential state (e.g. spin vectors),
// auxiliary derivatives integrated on the same adaptive clock as the
// orbital state.
package force

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/body"
)

// Snapshot is the read-only view of the system a force evaluates
// against. Bodies carries the positions and velocities of the state
// vector being evaluated (which mid-step differ from the store's
// committed state); Store is only for parameter reads.
type Snapshot struct {
	T      float64
	G      float64
	Bodies []body.Particle
	Store  *body.Store
}

// Force contributes accelerations to some or all particles. aux is the
// module's slice of the combined state vector (empty for forces without
// auxiliary state). Contributions are added into acc, never assigned.
type Force interface {
	Name() string
	Schema() body.Schema
	Accel(s *Snapshot, aux []float64, acc []mgl64.Vec3)
}

// AuxSlot identifies one module-owned scalar in the combined state
// vector.
type AuxSlot struct {
	Particle int
	Label    string
}

// ODEForce is a force that owns auxiliary state. Slots must be
// deterministic for a given store and module configuration: the same
// particle set always yields the same layout.
type ODEForce interface {
	Force
	AuxSlots(st *body.Store) []AuxSlot
	AuxInit(st *body.Store, aux []float64) error
	AuxDerive(s *Snapshot, aux []float64, dst []float64)
}

type entry struct {
	force    Force
	enabled  bool
	savedAux []float64
}

// Registry is the ordered list of registered force modules. Order is
// registration order; it fixes both the acceleration summation order
// and the placement of auxiliary variables in the combined vector.
type Registry struct {
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make([]entry, 0)}
}

// Register appends a module and declares its parameter schema on the
// store. A module may be registered at most once.
func (r *Registry) Register(st *body.Store, f Force) error {
	for _, e := range r.entries {
		if e.force.Name() == f.Name() {
			return fmt.Errorf("force: %q already registered", f.Name())
		}
	}
	if err := st.DeclareSchema(f.Schema()); err != nil {
		return fmt.Errorf("force: registering %q: %w", f.Name(), err)
	}
	r.entries = append(r.entries, entry{force: f, enabled: true})
	return nil
}

func (r *Registry) find(name string) (*entry, error) {
	for i := range r.entries {
		if r.entries[i].force.Name() == name {
			return &r.entries[i], nil
		}
	}
	return nil, fmt.Errorf("force: %q not registered", name)
}

// Enable re-enables a module; previously saved auxiliary state is
// restored when the state vector is rebuilt.
func (r *Registry) Enable(name string) error {
	e, err := r.find(name)
	if err != nil {
		return err
	}
	e.enabled = true
	return nil
}

// Disable removes a module's contribution without losing its auxiliary
// state.
func (r *Registry) Disable(name string) error {
	e, err := r.find(name)
	if err != nil {
		return err
	}
	e.enabled = false
	return nil
}

// Enabled returns the enabled modules in registration order.
func (r *Registry) Enabled() []Force {
	forces := make([]Force, 0, len(r.entries))
	for _, e := range r.entries {
		if e.enabled {
			forces = append(forces, e.force)
		}
	}
	return forces
}

// SaveAux stashes a module's auxiliary values across layout rebuilds
// (including while the module is disabled).
func (r *Registry) SaveAux(name string, aux []float64) {
	if e, err := r.find(name); err == nil {
		e.savedAux = append(e.savedAux[:0], aux...)
	}
}

// SavedAux returns the stashed values, or nil if none were saved.
func (r *Registry) SavedAux(name string) []float64 {
	if e, err := r.find(name); err == nil {
		return e.savedAux
	}
	return nil
}

// Accelerations sums the baseline pairwise gravity and every enabled
// module's contribution, in registration order, into acc. auxOf yields
// a module's slice of the combined state vector.
func (r *Registry) Accelerations(s *Snapshot, auxOf func(Force) []float64, acc []mgl64.Vec3) {
	for i := range acc {
		acc[i] = mgl64.Vec3{}
	}
	Gravity(s, acc)
	for i := range r.entries {
		if !r.entries[i].enabled {
			continue
		}
		f := r.entries[i].force
		f.Accel(s, auxOf(f), acc)
	}
}
