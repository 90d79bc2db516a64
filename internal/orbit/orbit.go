// Package orbit converts between Cartesian state and Keplerian orbital
// elements. All functions are stateless.
//
// Angle conventions for degenerate orbits: a near-circular orbit
// (e < DegeneracyTol) reports ArgPeri = 0 and folds the periapsis angle
// into the true anomaly; a near-equatorial orbit (sin i < DegeneracyTol)
// reports Node = 0 and measures ArgPeri from the x-axis. Downstream
// consumers relying on angle continuity should be aware angles jump
// when an orbit crosses a degeneracy.
package orbit

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DegeneracyTol is the threshold below which eccentricity and
// inclination are treated as exactly zero for angle conventions.
const DegeneracyTol = 1e-12

// Elements are the classical Keplerian orbital elements.
type Elements struct {
	A        float64 // semi-major axis
	E        float64 // eccentricity
	Inc      float64 // inclination [0, pi]
	Node     float64 // longitude of ascending node [0, 2pi)
	ArgPeri  float64 // argument of periapsis [0, 2pi)
	TrueAnom float64 // true anomaly [0, 2pi)
}

// Pomega is the longitude of periapsis, Node + ArgPeri wrapped to [0, 2pi).
func (el Elements) Pomega() float64 {
	return wrapTwoPi(el.Node + el.ArgPeri)
}

// MeanMotion returns n = sqrt(mu/a^3) for a bound orbit.
func (el Elements) MeanMotion(mu float64) float64 {
	return math.Sqrt(mu / (el.A * el.A * el.A))
}

// Period returns the orbital period 2pi/n.
func (el Elements) Period(mu float64) float64 {
	return 2 * math.Pi / el.MeanMotion(mu)
}

// FromCartesian maps a relative Cartesian state (position and velocity
// of a body with respect to its reference) and gravitational parameter
// mu = G(m + M) to orbital elements.
func FromCartesian(mu float64, rpos, rvel mgl64.Vec3) (Elements, error) {
	if mu <= 0 {
		return Elements{}, fmt.Errorf("orbit: gravitational parameter must be positive, got %v", mu)
	}
	r := rpos.Len()
	if r == 0 {
		return Elements{}, fmt.Errorf("orbit: zero separation from reference body")
	}

	h := rpos.Cross(rvel)
	hmag := h.Len()
	if hmag == 0 {
		return Elements{}, fmt.Errorf("orbit: radial trajectory has no defined plane")
	}

	v2 := rvel.Dot(rvel)
	energy := v2/2 - mu/r
	if energy >= 0 {
		return Elements{}, fmt.Errorf("orbit: trajectory is unbound (specific energy %v)", energy)
	}
	a := -mu / (2 * energy)

	evec := rvel.Cross(h).Mul(1 / mu).Sub(rpos.Mul(1 / r))
	e := evec.Len()

	inc := math.Acos(clamp(h.Z() / hmag))

	// Node vector: z-hat cross h, pointing at the ascending node.
	n := mgl64.Vec3{-h.Y(), h.X(), 0}
	nmag := n.Len()
	equatorial := nmag < DegeneracyTol*hmag
	circular := e < DegeneracyTol

	el := Elements{A: a, E: e, Inc: inc}

	switch {
	case equatorial && circular:
		// Both node and periapsis undefined: measure true anomaly as
		// the true longitude from the x-axis.
		f := math.Atan2(rpos.Y(), rpos.X())
		if h.Z() < 0 {
			f = -f
		}
		el.TrueAnom = wrapTwoPi(f)
	case equatorial:
		// Node undefined: ArgPeri measured from the x-axis.
		omega := math.Atan2(evec.Y(), evec.X())
		if h.Z() < 0 {
			omega = -omega
		}
		el.ArgPeri = wrapTwoPi(omega)
		el.TrueAnom = trueAnomaly(evec, rpos, rvel)
	case circular:
		// Periapsis undefined: true anomaly is the argument of latitude,
		// measured from the ascending node.
		u := math.Acos(clamp(n.Dot(rpos) / (nmag * r)))
		if rpos.Z() < 0 {
			u = 2*math.Pi - u
		}
		el.Node = wrapTwoPi(math.Atan2(n.Y(), n.X()))
		el.TrueAnom = u
	default:
		el.Node = wrapTwoPi(math.Atan2(n.Y(), n.X()))
		omega := math.Acos(clamp(n.Dot(evec) / (nmag * e)))
		if evec.Z() < 0 {
			omega = 2*math.Pi - omega
		}
		el.ArgPeri = omega
		el.TrueAnom = trueAnomaly(evec, rpos, rvel)
	}

	return el, nil
}

// ToCartesian is the inverse of FromCartesian for well-posed bound
// orbits. It fails fast on non-physical elements rather than clamping.
func ToCartesian(mu float64, el Elements) (rpos, rvel mgl64.Vec3, err error) {
	if mu <= 0 {
		return rpos, rvel, fmt.Errorf("orbit: gravitational parameter must be positive, got %v", mu)
	}
	if el.E < 0 || el.E >= 1 {
		return rpos, rvel, fmt.Errorf("orbit: eccentricity %v outside [0,1)", el.E)
	}
	if el.A <= 0 {
		return rpos, rvel, fmt.Errorf("orbit: bound orbit requires positive semi-major axis, got %v", el.A)
	}

	p := el.A * (1 - el.E*el.E)
	cf, sf := math.Cos(el.TrueAnom), math.Sin(el.TrueAnom)
	r := p / (1 + el.E*cf)

	// Perifocal frame state.
	rP := mgl64.Vec3{r * cf, r * sf, 0}
	vscale := math.Sqrt(mu / p)
	vP := mgl64.Vec3{-vscale * sf, vscale * (el.E + cf), 0}

	rot := rotation(el.Node, el.Inc, el.ArgPeri)
	return rot.Mul3x1(rP), rot.Mul3x1(vP), nil
}

// trueAnomaly measures the angle from periapsis to rpos, signed by the
// radial velocity.
func trueAnomaly(evec, rpos, rvel mgl64.Vec3) float64 {
	f := math.Acos(clamp(evec.Dot(rpos) / (evec.Len() * rpos.Len())))
	if rpos.Dot(rvel) < 0 {
		f = 2*math.Pi - f
	}
	return f
}

// rotation builds Rz(node) Rx(inc) Rz(argPeri).
func rotation(node, inc, argPeri float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(node).Mul3(mgl64.Rotate3DX(inc)).Mul3(mgl64.Rotate3DZ(argPeri))
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func wrapTwoPi(x float64) float64 {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x
}
