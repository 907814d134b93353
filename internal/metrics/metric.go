package metrics

// Metric accumulates one summary statistic over a stream of samples.
type Metric interface {
	Name() string
	Observe(v float64)
	Value() float64
	Reset()
}

// Collect feeds every value to every metric and returns the results by name.
func Collect(values []float64, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, v := range values {
			m.Observe(v)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
