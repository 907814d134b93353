package optim

import (
	"fmt"
	"math"
)

// Interval is a closed range [Min, Max].
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (i Interval) Width() float64 { return i.Max - i.Min }

func (i Interval) Contains(v float64) bool {
	return v >= i.Min && v <= i.Max
}

func (i Interval) Clamp(v float64) float64 {
	return math.Min(math.Max(v, i.Min), i.Max)
}

// Bounds is the search box over (max lift, rise duration, fall duration).
type Bounds [3]Interval

var axisNames = [3]string{"max_lift", "rise_duration", "fall_duration"}

// DefaultBounds allows 5-20 lift and 45-135 degrees for rise and fall.
func DefaultBounds() Bounds {
	return Bounds{
		{Min: 5, Max: 20},
		{Min: 45, Max: 135},
		{Min: 45, Max: 135},
	}
}

func (b Bounds) Validate() error {
	for i, iv := range b {
		if math.IsNaN(iv.Min) || math.IsNaN(iv.Max) || math.IsInf(iv.Min, 0) || math.IsInf(iv.Max, 0) {
			return fmt.Errorf("%w: %s [%g, %g] is not finite", ErrInvalidBounds, axisNames[i], iv.Min, iv.Max)
		}
		if iv.Min > iv.Max {
			return fmt.Errorf("%w: %s min %g above max %g", ErrInvalidBounds, axisNames[i], iv.Min, iv.Max)
		}
	}
	return nil
}

func (b Bounds) Contains(x [3]float64) bool {
	for i, iv := range b {
		if !iv.Contains(x[i]) {
			return false
		}
	}
	return true
}

func (b Bounds) Clamp(x [3]float64) [3]float64 {
	for i, iv := range b {
		x[i] = iv.Clamp(x[i])
	}
	return x
}

// fromUnit maps a point of the unit cube into the box.
func (b Bounds) fromUnit(u []float64) [3]float64 {
	var x [3]float64
	for i, iv := range b {
		x[i] = iv.Clamp(iv.Min + u[i]*iv.Width())
	}
	return x
}

// toUnit maps a point of the box into the unit cube. Degenerate axes map
// to 0.
func (b Bounds) toUnit(x [3]float64) []float64 {
	u := make([]float64, len(b))
	for i, iv := range b {
		if w := iv.Width(); w > 0 {
			u[i] = (x[i] - iv.Min) / w
		}
	}
	return u
}
