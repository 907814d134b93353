package metrics

import "math"

// RMS is the root mean square of all observed samples.
type RMS struct {
	name       string
	sumSquares float64
	samples    int
}

func NewRMS(name string) *RMS {
	return &RMS{name: name}
}

func (r *RMS) Name() string { return r.name }

func (r *RMS) Observe(v float64) {
	r.sumSquares += v * v
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSquares / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sumSquares = 0
	r.samples = 0
}
