package sim

import (
	"fmt"
	"math"
)

// AuxParticles returns the indices of particles carrying auxiliary
// state (e.g. spin vectors), in ascending order.
func (s *Simulation) AuxParticles() []int {
	if err := s.ensureLayout(); err != nil {
		return nil
	}
	seen := make(map[int]bool)
	out := make([]int, 0)
	for _, ode := range s.lay.odeForces {
		for _, slot := range ode.AuxSlots(s.store) {
			if !seen[slot.Particle] {
				seen[slot.Particle] = true
				out = append(out, slot.Particle)
			}
		}
	}
	// slots are emitted in particle order per force; a second force
	// could interleave, so sort defensively
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Sampler produces one record per sampled time: simulation time,
// Cartesian state of every body, Jacobi orbital elements of every body
// after the first (each measured about the center of mass of the bodies
// before it), and the spin vector and magnitude of every spin-carrying
// body. This is the record layout consumed by run storage, streaming
// and plotting.
type Sampler struct {
	s    *Simulation
	spin []int
}

func NewSampler(s *Simulation) *Sampler {
	return &Sampler{s: s, spin: s.AuxParticles()}
}

func (sp *Sampler) Header() []string {
	h := []string{"t"}
	n := sp.s.Store().Len()
	for i := 0; i < n; i++ {
		h = append(h,
			fmt.Sprintf("b%d_x", i), fmt.Sprintf("b%d_y", i), fmt.Sprintf("b%d_z", i),
			fmt.Sprintf("b%d_vx", i), fmt.Sprintf("b%d_vy", i), fmt.Sprintf("b%d_vz", i))
	}
	for i := 1; i < n; i++ {
		h = append(h,
			fmt.Sprintf("b%d_a", i), fmt.Sprintf("b%d_e", i), fmt.Sprintf("b%d_inc", i),
			fmt.Sprintf("b%d_node", i), fmt.Sprintf("b%d_pomega", i), fmt.Sprintf("b%d_f", i))
	}
	for _, i := range sp.spin {
		h = append(h,
			fmt.Sprintf("b%d_sx", i), fmt.Sprintf("b%d_sy", i),
			fmt.Sprintf("b%d_sz", i), fmt.Sprintf("b%d_smag", i))
	}
	return h
}

func (sp *Sampler) Row() []float64 {
	n := sp.s.Store().Len()
	row := []float64{sp.s.T()}

	for i := 0; i < n; i++ {
		p, _ := sp.s.Store().Particle(i)
		row = append(row, p.Pos.X(), p.Pos.Y(), p.Pos.Z(), p.Vel.X(), p.Vel.Y(), p.Vel.Z())
	}

	for i := 1; i < n; i++ {
		members := make([]int, i)
		for m := range members {
			members[m] = m
		}
		el, err := sp.s.OrbitAboutCOM(i, members...)
		if err != nil {
			row = append(row, math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN())
			continue
		}
		row = append(row, el.A, el.E, el.Inc, el.Node, el.Pomega(), el.TrueAnom)
	}

	for _, i := range sp.spin {
		spin, err := sp.s.Spin(i)
		if err != nil {
			row = append(row, math.NaN(), math.NaN(), math.NaN(), math.NaN())
			continue
		}
		row = append(row, spin.X(), spin.Y(), spin.Z(), spin.Len())
	}
	return row
}
