package analysis

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/motion"
)

func newLaw(t *testing.T, p cam.Params) *motion.Law {
	t.Helper()
	law, err := motion.New(p)
	require.NoError(t, err)
	return law
}

func TestAnalyzeSamplesFullCycle(t *testing.T) {
	res := New(newLaw(t, cam.Default())).Analyze()

	require.Len(t, res.Theta, DefaultSamples)
	assert.Len(t, res.Displacement, DefaultSamples)
	assert.Len(t, res.Velocity, DefaultSamples)
	assert.Len(t, res.Acceleration, DefaultSamples)
	assert.Len(t, res.Jerk, DefaultSamples)

	assert.Equal(t, 0.0, res.Theta[0])
	assert.InDelta(t, 225.0, res.Theta[len(res.Theta)-1], 1e-12)
	assert.Equal(t, cam.Default(), res.Params)

	assert.InDelta(t, 0.0, res.Displacement[0], 1e-12)
	assert.InDelta(t, 0.0, res.Displacement[len(res.Displacement)-1], 1e-9)
	assert.InDelta(t, 10.0, res.Metrics[MetricMaxDisplacement], 1e-3)
}

func TestWithSamples(t *testing.T) {
	law := newLaw(t, cam.Default())

	assert.Equal(t, 250, New(law, WithSamples(250)).Samples())
	assert.Equal(t, MinSamples, New(law, WithSamples(1)).Samples())
	assert.Equal(t, MinSamples, New(law, WithSamples(-5)).Samples())

	res := New(law, WithSamples(2)).Analyze()
	assert.Equal(t, []float64{0, 225}, res.Theta)
}

func TestSummaryStatistics(t *testing.T) {
	law := newLaw(t, cam.Default())
	res := New(law, WithSamples(901)).Analyze()

	var maxV, maxA, maxJ, sumA2, sumJ2 float64
	for i := range res.Theta {
		maxV = math.Max(maxV, math.Abs(res.Velocity[i]))
		maxA = math.Max(maxA, math.Abs(res.Acceleration[i]))
		maxJ = math.Max(maxJ, math.Abs(res.Jerk[i]))
		sumA2 += res.Acceleration[i] * res.Acceleration[i]
		sumJ2 += res.Jerk[i] * res.Jerk[i]
	}
	n := float64(len(res.Theta))

	assert.Equal(t, maxV, res.MaxVelocity)
	assert.Equal(t, maxA, res.MaxAcceleration)
	assert.Equal(t, maxJ, res.MaxJerk)
	assert.InDelta(t, math.Sqrt(sumA2/n), res.RMSAcceleration, 1e-12)
	assert.InDelta(t, math.Sqrt(sumJ2/n), res.RMSJerk, 1e-12)

	// 901 samples over 225 degrees puts one sample on 45 degrees, the
	// velocity peak of a 90 degree rise.
	rate := law.AngularVelocity() * cam.DegToRad
	peak := 10.0 / 90.0 * 2 * rate
	assert.InDelta(t, peak, res.MaxVelocity, 1e-9)
}

func TestViolationFlags(t *testing.T) {
	base := New(newLaw(t, cam.Default())).Analyze()
	assert.False(t, base.Violated(), "reference design is within its limits")
	assert.Zero(t, base.Metrics[MetricVelocityExceedance])

	p := cam.Default()
	p.VelocityLimit = base.MaxVelocity / 2
	p.AccelerationLimit = base.MaxAcceleration / 2
	p.JerkLimit = base.MaxJerk * 2

	res := New(newLaw(t, p)).Analyze()
	assert.True(t, res.VelocityViolation)
	assert.True(t, res.AccelerationViolation)
	assert.False(t, res.JerkViolation)
	assert.True(t, res.Violated())
	assert.Greater(t, res.Metrics[MetricVelocityExceedance], 0.0)
	assert.Less(t, res.Metrics[MetricVelocityExceedance], 1.0)
	assert.Zero(t, res.Metrics[MetricJerkExceedance])
}

func TestViolationIsStrict(t *testing.T) {
	base := New(newLaw(t, cam.Default())).Analyze()

	p := cam.Default()
	p.VelocityLimit = base.MaxVelocity
	res := New(newLaw(t, p)).Analyze()

	assert.False(t, res.VelocityViolation, "a maximum equal to the limit is allowed")
}

func TestAnalyzeRecomputes(t *testing.T) {
	a := New(newLaw(t, cam.Default()), WithSamples(10))

	first := a.Analyze()
	first.Velocity[3] = 1e9
	second := a.Analyze()

	assert.NotEqual(t, 1e9, second.Velocity[3])
	assert.Less(t, second.MaxVelocity, 1e9)
}

func TestAnalyzeParams(t *testing.T) {
	res, err := Analyze(cam.Default(), WithSamples(100))
	require.NoError(t, err)
	assert.Len(t, res.Theta, 100)

	bad := cam.Default()
	bad.RPM = 0
	_, err = Analyze(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, cam.ErrValidation)
}

func TestSpectrumMatchesDirectTransform(t *testing.T) {
	law := newLaw(t, cam.Default())
	a := New(law, WithSamples(1000))
	amps := a.Spectrum()
	require.Len(t, amps, 501)

	thetas := make([]float64, 1000)
	for i := range thetas {
		thetas[i] = float64(i) * 0.36
	}
	acc := law.Accelerations(thetas)
	peak := New(law).Analyze().MaxAcceleration

	// the follower returns to rest, so acceleration has no mean
	assert.InDelta(t, 0, amps[0], 1e-9*peak)

	for order := 1; order <= 12; order++ {
		var c complex128
		for i, v := range acc {
			c += complex(v, 0) * cmplx.Exp(complex(0, -2*math.Pi*float64(order*i)/1000))
		}
		want := 2 * cmplx.Abs(c) / 1000
		assert.InDelta(t, want, amps[order], 1e-8*peak, "order %d", order)
	}
}

func TestHarmonics(t *testing.T) {
	n := 64
	samples := make([]float64, n)
	for i := range samples {
		x := 2 * math.Pi * float64(i) / float64(n)
		samples[i] = 0.5 + 2*math.Cos(3*x) + 0.25*math.Sin(7*x)
	}

	amps := Harmonics(samples)
	require.Len(t, amps, n/2+1)
	assert.InDelta(t, 0.5, amps[0], 1e-12)
	assert.InDelta(t, 2.0, amps[3], 1e-12)
	assert.InDelta(t, 0.25, amps[7], 1e-12)
	assert.InDelta(t, 0.0, amps[5], 1e-12)
	assert.Equal(t, 3, DominantOrder(amps))

	assert.Nil(t, Harmonics(nil))
	assert.Equal(t, 0, DominantOrder([]float64{1}))
}
