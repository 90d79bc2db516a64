// Package metrics provides conservation diagnostics observed over a
// running simulation.
package metrics

import "math"

// Drift tracks the maximum relative drift of a conserved scalar from
// its value at the first observation.
type Drift struct {
	name     string
	observe  func() float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name string, observe func() float64) *Drift {
	return &Drift{name: name, observe: observe}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(t float64) {
	v := d.observe()

	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
