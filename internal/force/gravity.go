package force

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Below this many particles the symmetric pair loop beats splitting the
// sum across goroutines.
const gravityParallelThreshold = 64

// Gravity adds the mutual Newtonian attraction between every particle
// pair into acc. Summation order is fixed by particle index, so
// repeated runs from identical state produce bit-identical results.
// Massless particles feel gravity but exert none.
func Gravity(s *Snapshot, acc []mgl64.Vec3) {
	n := len(s.Bodies)
	if n < gravityParallelThreshold {
		gravityPairwise(s, acc)
		return
	}

	// Each worker owns a disjoint range of receivers and sums over all
	// sources j != i in index order: no shared accumulators, and the
	// per-receiver order is independent of the worker count.
	dynamo.ParallelFor(n, 16, func(start, end int) {
		for i := start; i < end; i++ {
			pi := s.Bodies[i]
			var a mgl64.Vec3
			for j := 0; j < n; j++ {
				if j == i || s.Bodies[j].Mass == 0 {
					continue
				}
				d := s.Bodies[j].Pos.Sub(pi.Pos)
				r2 := d.Dot(d)
				rInv := 1 / math.Sqrt(r2)
				a = a.Add(d.Mul(s.G * s.Bodies[j].Mass * rInv * rInv * rInv))
			}
			acc[i] = acc[i].Add(a)
		}
	})
}

func gravityPairwise(s *Snapshot, acc []mgl64.Vec3) {
	n := len(s.Bodies)
	for i := 0; i < n; i++ {
		pi := s.Bodies[i]
		for j := i + 1; j < n; j++ {
			pj := s.Bodies[j]
			d := pj.Pos.Sub(pi.Pos)
			r2 := d.Dot(d)
			rInv := 1 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			if pj.Mass != 0 {
				acc[i] = acc[i].Add(d.Mul(s.G * pj.Mass * r3Inv))
			}
			if pi.Mass != 0 {
				acc[j] = acc[j].Sub(d.Mul(s.G * pi.Mass * r3Inv))
			}
		}
	}
}
