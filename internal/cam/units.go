package cam

import "math"

const (
	// DegToRad converts degrees to radians.
	DegToRad = math.Pi / 180.0
	// RadToDeg converts radians to degrees.
	RadToDeg = 180.0 / math.Pi
	// FullTurn is one cam revolution in degrees.
	FullTurn = 360.0
)

// RPM is a rotational speed in revolutions per minute.
type RPM float64

// AngularVelocity returns the speed in radians per second.
func (r RPM) AngularVelocity() float64 {
	return 2 * math.Pi * float64(r) / 60.0
}

// NormalizeAngle reduces theta (degrees) into [0, 360).
func NormalizeAngle(theta float64) float64 {
	t := math.Mod(theta, FullTurn)
	if t < 0 {
		t += FullTurn
	}
	// -tiny + 360 rounds to 360
	if t >= FullTurn {
		t = 0
	}
	return t
}
