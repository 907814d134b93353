package parity

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/motion"
)

func referenceLaw(t *testing.T) *motion.Law {
	t.Helper()
	law, err := motion.New(cam.Default())
	require.NoError(t, err)
	return law
}

// closedForm evaluates the reference design straight from the published
// formulas, the way an independent engine would.
func closedForm(theta float64) (s, v, a, j float64) {
	const (
		h     = 10.0
		rise  = 90.0
		dwell = 45.0
		fall  = 90.0
	)
	w := 2 * math.Pi * 3000 / 60 * math.Pi / 180

	switch {
	case theta <= rise:
		b := theta / rise
		k := 1 / rise
		s = h * (b - math.Sin(2*math.Pi*b)/(2*math.Pi))
		v = h * k * (1 - math.Cos(2*math.Pi*b)) * w
		a = h * k * k * 2 * math.Pi * math.Sin(2*math.Pi*b) * w * w
		j = h * k * k * k * 4 * math.Pi * math.Pi * math.Cos(2*math.Pi*b) * w * w * w
	case theta <= rise+dwell:
		s = h
	case theta <= rise+dwell+fall:
		b := (theta - rise - dwell) / fall
		k := 1 / fall
		s = h * (1 - (b - math.Sin(2*math.Pi*b)/(2*math.Pi)))
		v = -h * k * (1 - math.Cos(2*math.Pi*b)) * w
		a = h * k * k * 2 * math.Pi * math.Sin(2*math.Pi*b) * w * w
		j = -h * k * k * k * 4 * math.Pi * math.Pi * math.Cos(2*math.Pi*b) * w * w * w
	}
	return s, v, a, j
}

func TestIntegerDegrees(t *testing.T) {
	d := IntegerDegrees()
	require.Len(t, d, 360)
	assert.Equal(t, 0.0, d[0])
	assert.Equal(t, 359.0, d[359])
}

func TestMatchesIndependentFormulas(t *testing.T) {
	thetas := IntegerDegrees()
	external := &Table{Theta: thetas}
	for _, th := range thetas {
		s, v, a, j := closedForm(th)
		external.Displacement = append(external.Displacement, s)
		external.Velocity = append(external.Velocity, v)
		external.Acceleration = append(external.Acceleration, a)
		external.Jerk = append(external.Jerk, j)
	}

	report, err := Compare(Reference(referenceLaw(t), thetas), external, DefaultTolerances)
	require.NoError(t, err)
	assert.Equal(t, 360, report.Samples)
	for _, d := range report.Deviations {
		assert.True(t, d.OK(), "%s max error %g at row %d", d.Quantity, d.MaxError, d.MaxIndex)
	}
	assert.True(t, report.OK())
}

func TestDetectsPerturbation(t *testing.T) {
	law := referenceLaw(t)
	want := Reference(law, IntegerDegrees())
	got := Reference(law, IntegerDegrees())

	got.Displacement[10] += 2e-10
	got.Jerk[200] -= 1e-3
	got.Jerk[300] += 1e-3
	got.Velocity[5] += 1e-9

	report, err := Compare(want, got, DefaultTolerances)
	require.NoError(t, err)
	assert.False(t, report.OK())

	byName := map[string]Deviation{}
	for _, d := range report.Deviations {
		byName[d.Quantity] = d
	}
	assert.Equal(t, 10, byName["displacement"].FirstFailure)
	assert.Equal(t, 1, byName["displacement"].Failures)
	assert.True(t, byName["velocity"].OK(), "1e-9 is inside the velocity tolerance")
	assert.True(t, byName["acceleration"].OK())
	assert.Equal(t, 200, byName["jerk"].FirstFailure)
	assert.Equal(t, 2, byName["jerk"].Failures)
	assert.InDelta(t, 1e-3, byName["jerk"].MaxError, 1e-9)
}

func TestNaNFails(t *testing.T) {
	law := referenceLaw(t)
	want := Reference(law, []float64{0, 45, 90})
	got := Reference(law, []float64{0, 45, 90})
	got.Acceleration[1] = math.NaN()

	report, err := Compare(want, got, DefaultTolerances)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.True(t, math.IsInf(report.Deviations[2].MaxError, 1))
}

func TestCompareShape(t *testing.T) {
	law := referenceLaw(t)
	want := Reference(law, []float64{0, 1, 2})

	_, err := Compare(want, Reference(law, []float64{0, 1}), DefaultTolerances)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Compare(want, Reference(law, []float64{0, 1, 3}), DefaultTolerances)
	assert.ErrorIs(t, err, ErrShape)

	broken := Reference(law, []float64{0, 1, 2})
	broken.Jerk = broken.Jerk[:2]
	_, err = Compare(want, broken, DefaultTolerances)
	assert.ErrorIs(t, err, ErrShape)
}

func TestTableJSON(t *testing.T) {
	table := Reference(referenceLaw(t), []float64{0, 45, 112.5, 180, 300})

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))
	assert.Contains(t, buf.String(), `"displacement"`)

	back, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, back)

	_, err = ReadTable(strings.NewReader(`{"theta": [0, 1], "displacement": [0]}`))
	assert.ErrorIs(t, err, ErrShape)

	_, err = ReadTable(strings.NewReader(`{"theta": [0, `))
	assert.Error(t, err)
}
