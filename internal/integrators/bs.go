package integrators

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// BS is a Gragg-Bulirsch-Stoer integrator: modified-midpoint sub-steps
// followed by Richardson extrapolation to h -> 0. With kMax levels of
// the even sequence 2, 4, 6, ... the scheme reaches order 2*kMax, far
// above the order-7 floor needed to resolve close, highly eccentric
// encounters. The error estimate is the difference between the last two
// entries of the extrapolation tableau, so no embedded coefficient pair
// is required.
type BS struct {
	safety   float64
	minScale float64
	maxScale float64
	kMax     int
	seq      []int
}

func NewBS() *BS {
	kMax := 6 // order 12
	seq := make([]int, kMax)
	for i := range seq {
		seq[i] = 2 * (i + 1)
	}
	return &BS{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
		kMax:     kMax,
		seq:      seq,
	}
}

func (b *BS) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _, _, _ := b.TryStep(sys, x, t, dt, math.Inf(1))
	return xNew
}

// TryStep attempts one extrapolated step. Acceptance may happen at any
// tableau level once the estimate drops below tol; rejection always
// recommends a strictly smaller dtNext.
func (b *BS) TryStep(sys dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, bool, error) {
	n := len(x)
	d0 := sys.Derive(x, t)

	// scale per component, matching the RK45 convention
	scale := make([]float64, n)
	for i := 0; i < n; i++ {
		scale[i] = math.Abs(x[i]) + math.Abs(dt*d0[i]) + 1e-10
	}

	tableau := make([][]dynamo.State, b.kMax)
	errEst := math.Inf(1)

	for k := 0; k < b.kMax; k++ {
		tableau[k] = make([]dynamo.State, k+1)
		tableau[k][0] = modifiedMidpoint(sys, x, d0, t, dt, b.seq[k])

		for j := 1; j <= k; j++ {
			ratio := float64(b.seq[k]) / float64(b.seq[k-j])
			denom := ratio*ratio - 1
			prev := tableau[k][j-1]
			diag := tableau[k-1][j-1]
			next := make(dynamo.State, n)
			for i := 0; i < n; i++ {
				next[i] = prev[i] + (prev[i]-diag[i])/denom
			}
			tableau[k][j] = next
		}

		if k == 0 {
			continue
		}

		errEst = 0
		best := tableau[k][k]
		prev := tableau[k][k-1]
		for i := 0; i < n; i++ {
			errEst = math.Max(errEst, math.Abs(best[i]-prev[i])/scale[i])
		}

		if errEst <= tol {
			order := 2 * (k + 1)
			grow := b.safety * math.Pow(tol/math.Max(errEst, 1e-300), 1/float64(order+1))
			grow = math.Min(b.maxScale, math.Max(1, grow))
			return best, dt * grow, true, nil
		}
	}

	shrink := b.safety * math.Pow(tol/errEst, 1/float64(2*b.kMax+1))
	shrink = math.Max(b.minScale, math.Min(0.7, shrink))
	return x, dt * shrink, false, nil
}

// modifiedMidpoint runs Gragg's smoothed midpoint rule with nSub
// sub-steps across [t, t+dt]. d0 is the derivative at (x, t), shared by
// every tableau row.
func modifiedMidpoint(sys dynamo.System, x, d0 dynamo.State, t, dt float64, nSub int) dynamo.State {
	n := len(x)
	h := dt / float64(nSub)

	z0 := x.Clone()
	z1 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		z1[i] = x[i] + h*d0[i]
	}

	for m := 1; m < nSub; m++ {
		d := sys.Derive(z1, t+float64(m)*h)
		z2 := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			z2[i] = z0[i] + 2*h*d[i]
		}
		z0, z1 = z1, z2
	}

	d := sys.Derive(z1, t+dt)
	y := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y[i] = 0.5 * (z0[i] + z1[i] + h*d[i])
	}
	return y
}
