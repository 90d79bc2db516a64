package force

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Parameter keys of the tidal spin force.
const (
	ParamK2   = "k2"   // potential Love number of degree 2
	ParamMOI  = "moi"  // moment of inertia
	ParamTau  = "tau"  // constant tidal time lag
	ParamSpin = "spin" // initial spin angular velocity vector
)

// TidalSpin is the constant-time-lag equilibrium tide (Hut 1981,
// Mignard 1979 form). A particle carrying a "moi" parameter is treated
// as an extended body: companions feel the acceleration of its tidal
// bulge, and the reaction torque evolves the body's spin vector, which
// lives in the combined state vector as auxiliary state.
//
// With tau = 0 the force reduces to the purely radial bulge term: no
// torque, spin magnitude exactly conserved.
type TidalSpin struct{}

func NewTidalSpin() *TidalSpin { return &TidalSpin{} }

func (ts *TidalSpin) Name() string { return "tidal_spin" }

func (ts *TidalSpin) Schema() body.Schema {
	return body.Schema{
		ParamK2:   body.KindScalar,
		ParamMOI:  body.KindScalar,
		ParamTau:  body.KindScalar,
		ParamSpin: body.KindVec3,
	}
}

// governed lists the extended bodies in particle-index order. The list
// is what fixes the auxiliary layout, so it must be deterministic.
func (ts *TidalSpin) governed(st *body.Store) []int {
	idx := make([]int, 0)
	for i := 0; i < st.Len(); i++ {
		if st.HasParam(i, ParamMOI) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (ts *TidalSpin) AuxSlots(st *body.Store) []AuxSlot {
	slots := make([]AuxSlot, 0)
	for _, i := range ts.governed(st) {
		slots = append(slots,
			AuxSlot{Particle: i, Label: "sx"},
			AuxSlot{Particle: i, Label: "sy"},
			AuxSlot{Particle: i, Label: "sz"},
		)
	}
	return slots
}

// AuxInit seeds each governed body's spin from its "spin" parameter,
// defaulting to zero, and validates the physical constants. A body
// carrying "moi" is governed, so it must also carry a Love number; a
// missing "k2" here is a setup mistake, not a zero-strength tide.
func (ts *TidalSpin) AuxInit(st *body.Store, aux []float64) error {
	for gi, i := range ts.governed(st) {
		moi, err := st.Scalar(i, ParamMOI)
		if err != nil {
			return err
		}
		if moi <= 0 {
			return fmt.Errorf("force: tidal_spin particle %d: moment of inertia must be positive, got %v", i, moi)
		}
		k2, err := st.Scalar(i, ParamK2)
		if err != nil {
			return fmt.Errorf("force: tidal_spin particle %d: %w", i, err)
		}
		if k2 < 0 {
			return fmt.Errorf("force: tidal_spin particle %d: negative Love number %v", i, k2)
		}

		spin, err := st.Vec3(i, ParamSpin)
		if err != nil {
			if !errors.Is(err, dynamo.ErrNotFound) {
				return err
			}
			spin = mgl64.Vec3{}
		}
		aux[gi*3+0] = spin.X()
		aux[gi*3+1] = spin.Y()
		aux[gi*3+2] = spin.Z()
	}
	return nil
}

// companionAccel returns the tidal acceleration on companion c raised
// on extended body p spinning at omega. r points from p to c.
func companionAccel(s *Snapshot, p, c body.Particle, k2, tau float64, omega mgl64.Vec3) mgl64.Vec3 {
	r := c.Pos.Sub(p.Pos)
	v := c.Vel.Sub(p.Vel)
	rmag := r.Len()
	if rmag == 0 {
		return mgl64.Vec3{}
	}
	rhat := r.Mul(1 / rmag)
	rdot := v.Dot(rhat)

	r5 := p.Radius * p.Radius * p.Radius * p.Radius * p.Radius
	r7 := rmag * rmag * rmag * rmag * rmag * rmag * rmag
	coef := -3 * k2 * s.G * c.Mass * r5 / r7

	// radial bulge term plus the lagged tangential term
	term := rhat.Mul(1 + 3*tau*rdot/rmag)
	if tau != 0 {
		lag := v.Sub(rhat.Mul(rdot)).Sub(omega.Cross(r))
		term = term.Add(lag.Mul(tau / rmag))
	}
	return term.Mul(coef)
}

func (ts *TidalSpin) Accel(s *Snapshot, aux []float64, acc []mgl64.Vec3) {
	for gi, i := range ts.governed(s.Store) {
		p := s.Bodies[i]
		k2, err := s.Store.Scalar(i, ParamK2)
		if err != nil {
			continue
		}
		tau, err := s.Store.Scalar(i, ParamTau)
		if err != nil {
			tau = 0
		}
		omega := mgl64.Vec3{aux[gi*3], aux[gi*3+1], aux[gi*3+2]}

		for j := range s.Bodies {
			if j == i || s.Bodies[j].Mass == 0 {
				continue
			}
			c := s.Bodies[j]
			a := companionAccel(s, p, c, k2, tau, omega)
			acc[j] = acc[j].Add(a)
			if p.Mass > 0 {
				acc[i] = acc[i].Sub(a.Mul(c.Mass / p.Mass))
			}
		}
	}
}

// AuxDerive computes dOmega/dt for each governed body: the reaction
// torque of the tidal force on its companions, divided by the moment of
// inertia.
func (ts *TidalSpin) AuxDerive(s *Snapshot, aux []float64, dst []float64) {
	for gi, i := range ts.governed(s.Store) {
		p := s.Bodies[i]
		k2, errK2 := s.Store.Scalar(i, ParamK2)
		moi, errMOI := s.Store.Scalar(i, ParamMOI)
		tau, err := s.Store.Scalar(i, ParamTau)
		if err != nil {
			tau = 0
		}
		dst[gi*3+0] = 0
		dst[gi*3+1] = 0
		dst[gi*3+2] = 0
		if errK2 != nil || errMOI != nil || moi <= 0 {
			continue
		}
		omega := mgl64.Vec3{aux[gi*3], aux[gi*3+1], aux[gi*3+2]}

		var torque mgl64.Vec3
		for j := range s.Bodies {
			if j == i || s.Bodies[j].Mass == 0 {
				continue
			}
			c := s.Bodies[j]
			a := companionAccel(s, p, c, k2, tau, omega)
			r := c.Pos.Sub(p.Pos)
			torque = torque.Sub(r.Cross(a).Mul(c.Mass))
		}

		dOmega := torque.Mul(1 / moi)
		dst[gi*3+0] = dOmega.X()
		dst[gi*3+1] = dOmega.Y()
		dst[gi*3+2] = dOmega.Z()
	}
}
