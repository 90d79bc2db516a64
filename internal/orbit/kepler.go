package orbit

import (
	"fmt"
	"math"
)

const (
	keplerTol     = 1e-14
	keplerMaxIter = 50
)

// MeanToTrue solves Kepler's equation M = E - e sin E by Newton
// iteration and converts the eccentric anomaly to true anomaly.
func MeanToTrue(m, e float64) (float64, error) {
	if e < 0 || e >= 1 {
		return 0, fmt.Errorf("orbit: eccentricity %v outside [0,1)", e)
	}
	m = wrapTwoPi(m)

	ecc := m
	if e > 0.8 {
		ecc = math.Pi
	}
	for i := 0; i < keplerMaxIter; i++ {
		delta := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < keplerTol {
			return eccentricToTrue(ecc, e), nil
		}
	}
	return 0, fmt.Errorf("orbit: Kepler iteration failed for M=%v e=%v", m, e)
}

// TrueToMean converts true anomaly to mean anomaly.
func TrueToMean(f, e float64) float64 {
	ecc := trueToEccentric(f, e)
	return wrapTwoPi(ecc - e*math.Sin(ecc))
}

func eccentricToTrue(ecc, e float64) float64 {
	return wrapTwoPi(2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(ecc/2),
		math.Sqrt(1-e)*math.Cos(ecc/2),
	))
}

func trueToEccentric(f, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1-e)*math.Sin(f/2),
		math.Sqrt(1+e)*math.Cos(f/2),
	)
}
