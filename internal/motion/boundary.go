package motion

import "github.com/san-kum/camkin/internal/cam"

// Boundary is the follower condition handed to a time-stepping solver.
type Boundary struct {
	Displacement float64
	Velocity     float64
	Acceleration float64
}

// AngleAtTime converts seconds since the cam passed 0 degrees into a cam
// angle in [0, 360).
func (l *Law) AngleAtTime(t float64) float64 {
	return cam.NormalizeAngle(t * l.angularVelocity * cam.RadToDeg)
}

func (l *Law) BoundaryAt(t float64) Boundary {
	s := l.At(l.AngleAtTime(t))
	return Boundary{
		Displacement: s.Displacement,
		Velocity:     s.Velocity,
		Acceleration: s.Acceleration,
	}
}

// BoundaryConditions evaluates BoundaryAt for every time step concurrently.
func (l *Law) BoundaryConditions(times []float64) []Boundary {
	out := make([]Boundary, len(times))
	ParallelFor(len(times), DefaultMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = l.BoundaryAt(times[i])
		}
	})
	return out
}
