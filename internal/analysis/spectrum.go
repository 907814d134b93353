package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/camkin/internal/cam"
)

// Spectrum returns the amplitude of each cam-order harmonic of the
// follower acceleration over one full revolution. Index k is order k, so
// index 0 is the mean. The revolution is sampled at Samples() points in
// [0, 360).
func (a *Analyzer) Spectrum() []float64 {
	n := a.samples
	thetas := make([]float64, n)
	step := cam.FullTurn / float64(n)
	for i := range thetas {
		thetas[i] = float64(i) * step
	}
	return Harmonics(a.law.Accelerations(thetas))
}

// Harmonics converts one period of evenly spaced samples into single-sided
// amplitudes, orders 0 through len(samples)/2.
func Harmonics(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}

	coeffs := fft.FFTReal(samples)
	amps := make([]float64, n/2+1)
	for k := range amps {
		amp := cmplx.Abs(coeffs[k]) / float64(n)
		if k != 0 && !(n%2 == 0 && k == n/2) {
			amp *= 2
		}
		amps[k] = amp
	}
	return amps
}

// DominantOrder is the harmonic order with the largest amplitude, ignoring
// the mean.
func DominantOrder(amps []float64) int {
	best := 0
	for k := 1; k < len(amps); k++ {
		if best == 0 || amps[k] > amps[best] {
			best = k
		}
	}
	return best
}
