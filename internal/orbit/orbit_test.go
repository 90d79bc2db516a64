package orbit_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/orbit"
)

var _ = Describe("FromCartesian / ToCartesian", func() {
	const mu = 1.5

	It("round-trips a general bound orbit", func() {
		el := orbit.Elements{
			A: 2.3, E: 0.35, Inc: 0.4,
			Node: 1.2, ArgPeri: 2.1, TrueAnom: 0.7,
		}
		rpos, rvel, err := orbit.ToCartesian(mu, el)
		Expect(err).NotTo(HaveOccurred())

		got, err := orbit.FromCartesian(mu, rpos, rvel)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.A).To(BeNumerically("~", el.A, 1e-10))
		Expect(got.E).To(BeNumerically("~", el.E, 1e-10))
		Expect(got.Inc).To(BeNumerically("~", el.Inc, 1e-10))
		Expect(got.Node).To(BeNumerically("~", el.Node, 1e-10))
		Expect(got.ArgPeri).To(BeNumerically("~", el.ArgPeri, 1e-10))
		Expect(got.TrueAnom).To(BeNumerically("~", el.TrueAnom, 1e-10))
	})

	It("round-trips across many element combinations", func() {
		for _, e := range []float64{0.01, 0.3, 0.9} {
			for _, inc := range []float64{0.1, 1.0, 2.8} {
				for _, f := range []float64{0.5, 3.0, 5.5} {
					el := orbit.Elements{A: 1, E: e, Inc: inc, Node: 0.7, ArgPeri: 1.9, TrueAnom: f}
					rpos, rvel, err := orbit.ToCartesian(mu, el)
					Expect(err).NotTo(HaveOccurred())
					got, err := orbit.FromCartesian(mu, rpos, rvel)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.E).To(BeNumerically("~", e, 1e-9))
					Expect(got.TrueAnom).To(BeNumerically("~", f, 1e-8))
				}
			}
		}
	})

	It("reports ArgPeri=0 for a circular orbit and folds the angle into the anomaly", func() {
		el := orbit.Elements{A: 1, E: 0, Inc: 0.5, Node: 1.1, TrueAnom: 0.9}
		rpos, rvel, err := orbit.ToCartesian(mu, el)
		Expect(err).NotTo(HaveOccurred())

		got, err := orbit.FromCartesian(mu, rpos, rvel)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.E).To(BeNumerically("<", 1e-12))
		Expect(got.ArgPeri).To(BeZero())
		Expect(got.Node).To(BeNumerically("~", 1.1, 1e-10))
		Expect(got.TrueAnom).To(BeNumerically("~", 0.9, 1e-8))
	})

	It("reports Node=0 for an equatorial orbit and measures ArgPeri from the x-axis", func() {
		el := orbit.Elements{A: 1.8, E: 0.2, Inc: 0, ArgPeri: 0.8, TrueAnom: 1.4}
		rpos, rvel, err := orbit.ToCartesian(mu, el)
		Expect(err).NotTo(HaveOccurred())

		got, err := orbit.FromCartesian(mu, rpos, rvel)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Node).To(BeZero())
		Expect(got.ArgPeri).To(BeNumerically("~", 0.8, 1e-10))
		Expect(got.TrueAnom).To(BeNumerically("~", 1.4, 1e-10))
	})

	It("measures the true longitude for an equatorial circular orbit", func() {
		el := orbit.Elements{A: 1, E: 0, Inc: 0, TrueAnom: 2.2}
		rpos, rvel, err := orbit.ToCartesian(mu, el)
		Expect(err).NotTo(HaveOccurred())

		got, err := orbit.FromCartesian(mu, rpos, rvel)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ArgPeri).To(BeZero())
		Expect(got.Node).To(BeZero())
		Expect(got.TrueAnom).To(BeNumerically("~", 2.2, 1e-8))
	})

	It("rejects unbound trajectories", func() {
		// Speed well above escape velocity at r=1.
		_, err := orbit.FromCartesian(mu, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 10, 0})
		Expect(err).To(HaveOccurred())
	})

	It("rejects radial trajectories", func() {
		_, err := orbit.FromCartesian(mu, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.1, 0, 0})
		Expect(err).To(HaveOccurred())
	})

	It("rejects non-physical elements instead of clamping", func() {
		_, _, err := orbit.ToCartesian(mu, orbit.Elements{A: 1, E: 1.2})
		Expect(err).To(HaveOccurred())
		_, _, err = orbit.ToCartesian(mu, orbit.Elements{A: -1, E: 0.1})
		Expect(err).To(HaveOccurred())
		_, _, err = orbit.ToCartesian(0, orbit.Elements{A: 1})
		Expect(err).To(HaveOccurred())
	})

	It("satisfies the vis-viva relation", func() {
		el := orbit.Elements{A: 2, E: 0.4, TrueAnom: 1.0}
		rpos, rvel, err := orbit.ToCartesian(mu, el)
		Expect(err).NotTo(HaveOccurred())

		r := rpos.Len()
		v2 := rvel.Dot(rvel)
		Expect(v2).To(BeNumerically("~", mu*(2/r-1/el.A), 1e-12))
	})
})

var _ = Describe("Kepler's equation", func() {
	It("round-trips mean and true anomaly", func() {
		for _, e := range []float64{0, 0.1, 0.5, 0.8, 0.95} {
			for _, f := range []float64{0.1, 1.5, 3.1, 4.7, 6.0} {
				m := orbit.TrueToMean(f, e)
				got, err := orbit.MeanToTrue(m, e)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(BeNumerically("~", f, 1e-10),
					"e=%v f=%v", e, f)
			}
		}
	})

	It("is the identity for a circular orbit", func() {
		f, err := orbit.MeanToTrue(1.3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 1.3, 1e-14))
	})

	It("rejects eccentricity outside [0,1)", func() {
		_, err := orbit.MeanToTrue(1, 1.0)
		Expect(err).To(HaveOccurred())
		_, err = orbit.MeanToTrue(1, -0.1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Elements", func() {
	It("derives mean motion and period", func() {
		el := orbit.Elements{A: 4}
		n := el.MeanMotion(1)
		Expect(n).To(BeNumerically("~", 0.125, 1e-15))
		Expect(el.Period(1)).To(BeNumerically("~", 2*math.Pi/0.125, 1e-10))
	})

	It("wraps the longitude of periapsis", func() {
		el := orbit.Elements{Node: 4, ArgPeri: 4}
		Expect(el.Pomega()).To(BeNumerically("~", 8-2*math.Pi, 1e-12))
	})
})
