package motion

import (
	"math"

	"github.com/san-kum/camkin/internal/cam"
)

// State holds the four kinematic quantities at one cam angle.
type State struct {
	Displacement float64
	Velocity     float64
	Acceleration float64
	Jerk         float64
}

type segment int

const (
	segmentNone segment = iota
	segmentRise
	segmentDwell
	segmentFall
)

func (s segment) String() string {
	switch s {
	case segmentRise:
		return "rise"
	case segmentDwell:
		return "dwell"
	case segmentFall:
		return "fall"
	default:
		return "base"
	}
}

type Law struct {
	params          cam.Params
	angularVelocity float64
	// rate is the angular velocity in the per-degree derivative chain.
	rate          float64
	dwellEnd      float64
	totalDuration float64
}

// New validates p again and binds it. A record that never went through
// cam.New is accepted as long as its fields are feasible.
func New(p cam.Params) (*Law, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.CamDuration = p.TotalDuration()

	omega := cam.RPM(p.RPM).AngularVelocity()
	return &Law{
		params:          p,
		angularVelocity: omega,
		rate:            omega * cam.DegToRad,
		dwellEnd:        p.RiseDuration + p.DwellDuration,
		totalDuration:   p.TotalDuration(),
	}, nil
}

func (l *Law) Params() cam.Params { return l.params }

// AngularVelocity is the cam speed in rad/s.
func (l *Law) AngularVelocity() float64 { return l.angularVelocity }

// TotalDuration is rise + dwell + fall in degrees.
func (l *Law) TotalDuration() float64 { return l.totalDuration }

// locate maps a normalized angle to its segment and the segment-local
// progress β with k = 1/segment_duration. Zero-length segments are skipped.
func (l *Law) locate(theta float64) (seg segment, beta, k float64) {
	p := l.params
	switch {
	case p.RiseDuration > 0 && theta <= p.RiseDuration:
		return segmentRise, theta / p.RiseDuration, 1.0 / p.RiseDuration
	case theta <= l.dwellEnd:
		// with a zero-length rise theta == 0 already sits at full lift
		return segmentDwell, 0, 0
	case p.FallDuration > 0 && theta <= l.totalDuration:
		return segmentFall, (theta - l.dwellEnd) / p.FallDuration, 1.0 / p.FallDuration
	default:
		return segmentNone, 0, 0
	}
}

// At evaluates all four quantities at theta degrees.
func (l *Law) At(theta float64) State {
	seg, beta, k := l.locate(cam.NormalizeAngle(theta))
	h := l.params.MaxLift

	switch seg {
	case segmentRise:
		return cycloidal(h, beta, k, l.rate, 1)
	case segmentDwell:
		return State{Displacement: h}
	case segmentFall:
		return cycloidal(h, beta, k, l.rate, -1)
	default:
		return State{}
	}
}

// cycloidal evaluates the law on one segment. dir is +1 on the rise and -1
// on the fall: displacement is mirrored, velocity and jerk flip sign,
// acceleration keeps its sign.
func cycloidal(h, beta, k, rate float64, dir float64) State {
	x := 2 * math.Pi * beta
	sin, cos := math.Sincos(x)

	progress := beta - sin/(2*math.Pi)
	s := h * progress
	if dir < 0 {
		s = h * (1 - progress)
	}

	return State{
		Displacement: s,
		Velocity:     dir * h * k * (1 - cos) * rate,
		Acceleration: h * (k * k) * 2 * math.Pi * sin * (rate * rate),
		Jerk:         dir * h * (k * k * k) * 4 * math.Pi * math.Pi * cos * (rate * rate * rate),
	}
}

func (l *Law) Displacement(theta float64) float64 { return l.At(theta).Displacement }
func (l *Law) Velocity(theta float64) float64     { return l.At(theta).Velocity }
func (l *Law) Acceleration(theta float64) float64 { return l.At(theta).Acceleration }
func (l *Law) Jerk(theta float64) float64         { return l.At(theta).Jerk }

// Segment names the segment theta falls in: rise, dwell, fall or base.
func (l *Law) Segment(theta float64) string {
	seg, _, _ := l.locate(cam.NormalizeAngle(theta))
	return seg.String()
}

// States evaluates every angle in thetas concurrently.
func (l *Law) States(thetas []float64) []State {
	out := make([]State, len(thetas))
	ParallelFor(len(thetas), DefaultMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = l.At(thetas[i])
		}
	})
	return out
}

func (l *Law) batch(thetas []float64, fn func(State) float64) []float64 {
	out := make([]float64, len(thetas))
	ParallelFor(len(thetas), DefaultMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(l.At(thetas[i]))
		}
	})
	return out
}

func (l *Law) Displacements(thetas []float64) []float64 {
	return l.batch(thetas, func(s State) float64 { return s.Displacement })
}

func (l *Law) Velocities(thetas []float64) []float64 {
	return l.batch(thetas, func(s State) float64 { return s.Velocity })
}

func (l *Law) Accelerations(thetas []float64) []float64 {
	return l.batch(thetas, func(s State) float64 { return s.Acceleration })
}

func (l *Law) Jerks(thetas []float64) []float64 {
	return l.batch(thetas, func(s State) float64 { return s.Jerk })
}
