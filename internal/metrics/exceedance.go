package metrics

import "math"

// Exceedance is the fraction of samples whose magnitude is above a limit.
type Exceedance struct {
	name       string
	limit      float64
	violations int
	samples    int
}

func NewExceedance(name string, limit float64) *Exceedance {
	return &Exceedance{
		name:  name,
		limit: limit,
	}
}

func (e *Exceedance) Name() string {
	return e.name
}

func (e *Exceedance) Observe(v float64) {
	e.samples++
	if math.Abs(v) > e.limit {
		e.violations++
	}
}

func (e *Exceedance) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.violations) / float64(e.samples)
}

func (e *Exceedance) Reset() {
	e.violations = 0
	e.samples = 0
}
