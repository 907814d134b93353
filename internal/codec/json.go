package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/camkin/internal/cam"
)

// decimal is a float that always encodes in plain decimal notation with a
// fractional part, never in exponent form.
type decimal float64

func (d decimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("codec: cannot encode %v", f)
	}
	out := strconv.AppendFloat(nil, f, 'f', -1, 64)
	if bytes.IndexByte(out, '.') < 0 {
		out = append(out, ".0"...)
	}
	return out, nil
}

// jsonParams fixes the key order of the encoded object.
type jsonParams struct {
	BaseCircleRadius  decimal `json:"base_circle_radius"`
	MaxLift           decimal `json:"max_lift"`
	CamDuration       decimal `json:"cam_duration"`
	RiseDuration      decimal `json:"rise_duration"`
	DwellDuration     decimal `json:"dwell_duration"`
	FallDuration      decimal `json:"fall_duration"`
	JerkLimit         decimal `json:"jerk_limit"`
	AccelerationLimit decimal `json:"acceleration_limit"`
	VelocityLimit     decimal `json:"velocity_limit"`
	RPM               decimal `json:"rpm"`
}

// MarshalJSON writes p as an indented object, cam_duration included.
func MarshalJSON(p cam.Params) ([]byte, error) {
	p, err := cam.New(p)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(jsonParams{
		BaseCircleRadius:  decimal(p.BaseCircleRadius),
		MaxLift:           decimal(p.MaxLift),
		CamDuration:       decimal(p.CamDuration),
		RiseDuration:      decimal(p.RiseDuration),
		DwellDuration:     decimal(p.DwellDuration),
		FallDuration:      decimal(p.FallDuration),
		JerkLimit:         decimal(p.JerkLimit),
		AccelerationLimit: decimal(p.AccelerationLimit),
		VelocityLimit:     decimal(p.VelocityLimit),
		RPM:               decimal(p.RPM),
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func UnmarshalJSON(data []byte) (cam.Params, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return cam.Params{}, jsonParseError(data, err)
	}
	// anything after the object, a stray closing bracket included
	if _, err := dec.Token(); err != io.EOF {
		pe := &ParseError{Format: JSON, Err: errors.New("trailing data after object")}
		pe.Line, pe.Column = position(data, dec.InputOffset())
		return cam.Params{}, pe
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return fromMap(doc)
}

func jsonParseError(data []byte, err error) error {
	pe := &ParseError{Format: JSON, Err: err}

	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		pe.Line, pe.Column = position(data, syntax.Offset)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		pe.Err = errors.New("document is not an object")
		pe.Line, pe.Column = position(data, typ.Offset)
	}
	return pe
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
