// Package parity checks kinematic tables produced by an external engine
// against this module's motion law.
package parity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/motion"
)

var ErrShape = errors.New("parity: tables do not line up")

// Tolerances are absolute error bounds per quantity.
type Tolerances struct {
	Displacement float64 `json:"displacement"`
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	Jerk         float64 `json:"jerk"`
}

// DefaultTolerances is the agreement required with the simulation engine.
var DefaultTolerances = Tolerances{
	Displacement: 1e-10,
	Velocity:     1e-8,
	Acceleration: 1e-6,
	Jerk:         1e-4,
}

// Table is one kinematic sweep, column per quantity.
type Table struct {
	Theta        []float64 `json:"theta"`
	Displacement []float64 `json:"displacement"`
	Velocity     []float64 `json:"velocity"`
	Acceleration []float64 `json:"acceleration"`
	Jerk         []float64 `json:"jerk"`
}

func (t *Table) Len() int { return len(t.Theta) }

func (t *Table) Validate() error {
	n := len(t.Theta)
	columns := []struct {
		name string
		rows int
	}{
		{"displacement", len(t.Displacement)},
		{"velocity", len(t.Velocity)},
		{"acceleration", len(t.Acceleration)},
		{"jerk", len(t.Jerk)},
	}
	for _, c := range columns {
		if c.rows != n {
			return fmt.Errorf("%w: %s has %d rows, theta has %d", ErrShape, c.name, c.rows, n)
		}
	}
	return nil
}

// IntegerDegrees returns 0, 1, ..., 359.
func IntegerDegrees() []float64 {
	out := make([]float64, int(cam.FullTurn))
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Reference evaluates law at every angle in thetas.
func Reference(law *motion.Law, thetas []float64) *Table {
	states := law.States(thetas)
	t := &Table{
		Theta:        append([]float64(nil), thetas...),
		Displacement: make([]float64, len(states)),
		Velocity:     make([]float64, len(states)),
		Acceleration: make([]float64, len(states)),
		Jerk:         make([]float64, len(states)),
	}
	for i, s := range states {
		t.Displacement[i] = s.Displacement
		t.Velocity[i] = s.Velocity
		t.Acceleration[i] = s.Acceleration
		t.Jerk[i] = s.Jerk
	}
	return t
}

func ReadTable(r io.Reader) (*Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("parity: decode table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func WriteTable(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Deviation summarizes one quantity of a comparison.
type Deviation struct {
	Quantity  string
	Tolerance float64
	MaxError  float64
	// MaxIndex is the row of MaxError.
	MaxIndex int
	// FirstFailure is the first row above Tolerance, or -1.
	FirstFailure int
	Failures     int
}

func (d Deviation) OK() bool { return d.Failures == 0 }

type Report struct {
	Samples    int
	Deviations []Deviation
}

func (r *Report) OK() bool {
	for _, d := range r.Deviations {
		if !d.OK() {
			return false
		}
	}
	return true
}

// thetaTolerance is how far the two tables' angles may drift apart.
const thetaTolerance = 1e-9

// Compare measures got against want row by row. Rows must refer to the
// same angles.
func Compare(want, got *Table, tol Tolerances) (*Report, error) {
	if err := want.Validate(); err != nil {
		return nil, err
	}
	if err := got.Validate(); err != nil {
		return nil, err
	}
	if want.Len() != got.Len() {
		return nil, fmt.Errorf("%w: %d rows against %d", ErrShape, want.Len(), got.Len())
	}
	for i := range want.Theta {
		if math.Abs(want.Theta[i]-got.Theta[i]) > thetaTolerance {
			return nil, fmt.Errorf("%w: row %d is at %g and %g degrees", ErrShape, i, want.Theta[i], got.Theta[i])
		}
	}

	return &Report{
		Samples: want.Len(),
		Deviations: []Deviation{
			deviation("displacement", want.Displacement, got.Displacement, tol.Displacement),
			deviation("velocity", want.Velocity, got.Velocity, tol.Velocity),
			deviation("acceleration", want.Acceleration, got.Acceleration, tol.Acceleration),
			deviation("jerk", want.Jerk, got.Jerk, tol.Jerk),
		},
	}, nil
}

func deviation(name string, want, got []float64, tol float64) Deviation {
	d := Deviation{Quantity: name, Tolerance: tol, FirstFailure: -1}
	for i := range want {
		e := math.Abs(want[i] - got[i])
		if math.IsNaN(e) {
			e = math.Inf(1)
		}
		if e > d.MaxError {
			d.MaxError = e
			d.MaxIndex = i
		}
		if e > tol {
			d.Failures++
			if d.FirstFailure < 0 {
				d.FirstFailure = i
			}
		}
	}
	return d
}
