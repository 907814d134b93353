package cam

import "math"

const (
	DefaultBaseCircleRadius  = 25.0
	DefaultMaxLift           = 10.0
	DefaultRiseDuration      = 90.0
	DefaultDwellDuration     = 45.0
	DefaultFallDuration      = 90.0
	DefaultJerkLimit         = 1000.0
	DefaultAccelerationLimit = 500.0
	DefaultVelocityLimit     = 100.0
	DefaultRPM               = 3000.0
)

// Params is the design record of one cam profile. Build it with New; the
// zero value is not valid.
type Params struct {
	BaseCircleRadius float64 `json:"base_circle_radius" toml:"base_circle_radius" yaml:"base_circle_radius"`
	MaxLift          float64 `json:"max_lift" toml:"max_lift" yaml:"max_lift"`
	// CamDuration is always RiseDuration + DwellDuration + FallDuration.
	CamDuration       float64 `json:"cam_duration" toml:"cam_duration" yaml:"cam_duration"`
	RiseDuration      float64 `json:"rise_duration" toml:"rise_duration" yaml:"rise_duration"`
	DwellDuration     float64 `json:"dwell_duration" toml:"dwell_duration" yaml:"dwell_duration"`
	FallDuration      float64 `json:"fall_duration" toml:"fall_duration" yaml:"fall_duration"`
	JerkLimit         float64 `json:"jerk_limit" toml:"jerk_limit" yaml:"jerk_limit"`
	AccelerationLimit float64 `json:"acceleration_limit" toml:"acceleration_limit" yaml:"acceleration_limit"`
	VelocityLimit     float64 `json:"velocity_limit" toml:"velocity_limit" yaml:"velocity_limit"`
	RPM               float64 `json:"rpm" toml:"rpm" yaml:"rpm"`
}

// Default returns the reference design: 25 mm base circle, 10 mm lift,
// 90/45/90 degree rise/dwell/fall at 3000 rpm.
func Default() Params {
	p := Params{
		BaseCircleRadius:  DefaultBaseCircleRadius,
		MaxLift:           DefaultMaxLift,
		RiseDuration:      DefaultRiseDuration,
		DwellDuration:     DefaultDwellDuration,
		FallDuration:      DefaultFallDuration,
		JerkLimit:         DefaultJerkLimit,
		AccelerationLimit: DefaultAccelerationLimit,
		VelocityLimit:     DefaultVelocityLimit,
		RPM:               DefaultRPM,
	}
	p.CamDuration = p.TotalDuration()
	return p
}

// New normalizes CamDuration and validates p. Any CamDuration supplied by
// the caller is discarded.
func New(p Params) (Params, error) {
	p.CamDuration = p.TotalDuration()
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// TotalDuration is the sum of the three segment durations in degrees.
func (p Params) TotalDuration() float64 {
	return p.RiseDuration + p.DwellDuration + p.FallDuration
}

// Validate checks physical feasibility. It does not look at CamDuration,
// the total is always derived from the segments.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"base_circle_radius", p.BaseCircleRadius},
		{"max_lift", p.MaxLift},
		{"rise_duration", p.RiseDuration},
		{"dwell_duration", p.DwellDuration},
		{"fall_duration", p.FallDuration},
		{"jerk_limit", p.JerkLimit},
		{"acceleration_limit", p.AccelerationLimit},
		{"velocity_limit", p.VelocityLimit},
		{"rpm", p.RPM},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{Field: f.name, Value: f.value, Reason: "must be finite"}
		}
	}

	if p.BaseCircleRadius <= 0 {
		return &ValidationError{Field: "base_circle_radius", Value: p.BaseCircleRadius, Reason: "must be positive"}
	}
	if p.MaxLift <= 0 {
		return &ValidationError{Field: "max_lift", Value: p.MaxLift, Reason: "must be positive"}
	}
	if p.RiseDuration < 0 {
		return &ValidationError{Field: "rise_duration", Value: p.RiseDuration, Reason: "must be non-negative"}
	}
	if p.DwellDuration < 0 {
		return &ValidationError{Field: "dwell_duration", Value: p.DwellDuration, Reason: "must be non-negative"}
	}
	if p.FallDuration < 0 {
		return &ValidationError{Field: "fall_duration", Value: p.FallDuration, Reason: "must be non-negative"}
	}
	if p.RPM <= 0 {
		return &ValidationError{Field: "rpm", Value: p.RPM, Reason: "must be positive"}
	}

	total := p.TotalDuration()
	if total <= 0 {
		return &ValidationError{Field: "cam_duration", Value: total, Reason: "total duration must be positive"}
	}
	if total > FullTurn {
		return &ValidationError{Field: "cam_duration", Value: total, Reason: "total duration must not exceed 360 degrees"}
	}

	if p.VelocityLimit <= 0 {
		return &ValidationError{Field: "velocity_limit", Value: p.VelocityLimit, Reason: "must be positive"}
	}
	if p.AccelerationLimit <= 0 {
		return &ValidationError{Field: "acceleration_limit", Value: p.AccelerationLimit, Reason: "must be positive"}
	}
	if p.JerkLimit <= 0 {
		return &ValidationError{Field: "jerk_limit", Value: p.JerkLimit, Reason: "must be positive"}
	}
	return nil
}

// Vector returns the searchable subspace (max lift, rise, fall).
func (p Params) Vector() [3]float64 {
	return [3]float64{p.MaxLift, p.RiseDuration, p.FallDuration}
}

// WithVector returns a validated copy of p with max lift, rise and fall
// taken from x. Every other field is kept.
func (p Params) WithVector(x [3]float64) (Params, error) {
	p.MaxLift = x[0]
	p.RiseDuration = x[1]
	p.FallDuration = x[2]
	return New(p)
}
