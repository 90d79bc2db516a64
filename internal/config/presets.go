package config

import (
	"math"

	"github.com/san-kum/orbitsim/internal/body"
)

// Presets returns the named built-in scenarios.
func Presets() map[string]func() *Config {
	return map[string]func() *Config{
		"kozai":   Kozai,
		"twobody": TwoBody,
	}
}

// Kozai is a Lidov-Kozai cycle: a planet around a star, perturbed by a
// distant highly inclined stellar companion, with the tidal spin force
// evolving the spins of star and planet. The adaptive integrator
// resolves the high-eccentricity excursions of the inner orbit.
func Kozai() *Config {
	const (
		starMass   = 1.1
		starRadius = 0.00465 // solar radius in AU

		planetMass   = 7.8 * 9.55e-4 // in Jupiter masses
		planetRadius = 1 * 4.676e-4

		secondsPerYear = 3.154e7
	)

	// Spin rates in radians per code year (2*pi per orbit at 1 AU).
	solarSpinPeriod := 20. * 2 * math.Pi / 365.
	solarSpin := 2 * math.Pi / solarSpinPeriod
	solarK2 := 0.028
	solarTau := 0.2 / solarK2 * (2 * math.Pi / secondsPerYear)

	planetSpinPeriod := (10. / 24.) * 2 * math.Pi / 365.
	planetSpin := 2 * math.Pi / planetSpinPeriod
	planetK2 := 0.51
	planetTau := 0.02 / planetK2 * (2 * math.Pi / secondsPerYear)
	theta := 1. * math.Pi / 180 // one degree initial obliquity
	phi := 0. * math.Pi / 180

	cfg := DefaultConfig()
	cfg.Name = "kozai"
	cfg.Duration = 1e5 * 2 * math.Pi
	cfg.SampleInterval = 100 * 2 * math.Pi
	cfg.Forces = []string{"tidal_spin"}
	cfg.Bodies = []BodyConfig{
		{
			Mass:   starMass,
			Radius: starRadius,
			Params: map[string]ParamValue{
				"k2":  {Kind: body.KindScalar, Scalar: solarK2},
				"moi": {Kind: body.KindScalar, Scalar: 0.08 * starMass * starRadius * starRadius},
				"tau": {Kind: body.KindScalar, Scalar: solarTau},
				"spin": {Kind: body.KindVec3, Vec: [3]float64{
					0,
					0,
					solarSpin,
				}},
			},
		},
		{
			Mass:   planetMass,
			Radius: planetRadius,
			Orbit:  &OrbitConfig{A: 5, E: 0.1, ArgPeri: 45 * math.Pi / 180},
			Params: map[string]ParamValue{
				"k2":  {Kind: body.KindScalar, Scalar: planetK2},
				"moi": {Kind: body.KindScalar, Scalar: 0.25 * planetMass * planetRadius * planetRadius},
				"tau": {Kind: body.KindScalar, Scalar: planetTau},
				"spin": {Kind: body.KindVec3, Vec: [3]float64{
					planetSpin * math.Sin(theta) * math.Sin(phi),
					planetSpin * math.Sin(theta) * math.Cos(phi),
					planetSpin * math.Cos(theta),
				}},
			},
		},
		{
			Mass:  starMass,
			Orbit: &OrbitConfig{A: 1000, E: 0, Inc: 85.6 * math.Pi / 180},
		},
	}
	return cfg
}

// TwoBody is a plain Keplerian binary used as a conservation benchmark.
func TwoBody() *Config {
	cfg := DefaultConfig()
	cfg.Name = "twobody"
	cfg.Duration = 1e3 * 2 * math.Pi
	cfg.SampleInterval = 2 * math.Pi
	cfg.Bodies = []BodyConfig{
		{Mass: 1},
		{Mass: 1e-3, Orbit: &OrbitConfig{A: 1, E: 0.3}},
	}
	return cfg
}
