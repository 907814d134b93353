// Package analysis samples a motion law over one cam cycle and reduces the
// samples to the figures a designer reviews.
//
// An [Analyzer] evaluates the law at evenly spaced angles over
// [0, total duration], both ends included:
//
//	law, _ := motion.New(cam.Default())
//	res := analysis.New(law, analysis.WithSamples(2000)).Analyze()
//	if res.JerkViolation {
//	    // max |jerk| is above the jerk limit
//	}
//
// [Result] carries the raw arrays for plotting, absolute maxima, RMS of
// acceleration and jerk, and one violation flag per kinematic limit.
// Limits are compared with a strict greater-than.
//
// [Analyzer.Spectrum] decomposes one full revolution of acceleration into
// cam-order harmonics.
package analysis
