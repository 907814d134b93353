package metrics

import "math"

// MaxAbs tracks the largest absolute sample.
type MaxAbs struct {
	name string
	max  float64
}

func NewMaxAbs(name string) *MaxAbs {
	return &MaxAbs{name: name}
}

func (m *MaxAbs) Name() string { return m.name }

func (m *MaxAbs) Observe(v float64) {
	if a := math.Abs(v); a > m.max {
		m.max = a
	}
}

func (m *MaxAbs) Value() float64 { return m.max }

func (m *MaxAbs) Reset() { m.max = 0 }
