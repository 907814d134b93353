package codec

import (
	"encoding/json"
	"sort"

	"github.com/san-kum/camkin/internal/cam"
)

// required must be present in every document, in this order of checking.
var required = []string{
	"base_circle_radius",
	"max_lift",
	"rise_duration",
	"dwell_duration",
	"fall_duration",
	"rpm",
}

// optional fields fall back to cam.Default. cam_duration is accepted but
// always recomputed.
var optional = []string{
	"cam_duration",
	"jerk_limit",
	"acceleration_limit",
	"velocity_limit",
}

func fieldPtr(p *cam.Params, name string) *float64 {
	switch name {
	case "base_circle_radius":
		return &p.BaseCircleRadius
	case "max_lift":
		return &p.MaxLift
	case "cam_duration":
		return &p.CamDuration
	case "rise_duration":
		return &p.RiseDuration
	case "dwell_duration":
		return &p.DwellDuration
	case "fall_duration":
		return &p.FallDuration
	case "jerk_limit":
		return &p.JerkLimit
	case "acceleration_limit":
		return &p.AccelerationLimit
	case "velocity_limit":
		return &p.VelocityLimit
	case "rpm":
		return &p.RPM
	default:
		return nil
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// fromMap checks presence first, then types, then unexpected keys, and
// only then builds the record.
func fromMap(data map[string]any) (cam.Params, error) {
	for _, name := range required {
		if _, ok := data[name]; !ok {
			return cam.Params{}, &FieldError{Field: name, Kind: FieldMissing}
		}
	}

	p := cam.Default()
	for _, name := range append(append([]string{}, required...), optional...) {
		v, ok := data[name]
		if !ok {
			continue
		}
		f, ok := number(v)
		if !ok {
			return cam.Params{}, &FieldError{Field: name, Kind: FieldType, Value: v}
		}
		*fieldPtr(&p, name) = f
	}

	var unknown []string
	for name := range data {
		if fieldPtr(&cam.Params{}, name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return cam.Params{}, &FieldError{Field: unknown[0], Kind: FieldUnknown, Value: data[unknown[0]]}
	}

	return cam.New(p)
}
