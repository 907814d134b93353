// Package motion evaluates the rise/dwell/fall cam motion law.
//
// A [Law] binds a validated [cam.Params] and maps any cam angle (degrees,
// reduced modulo 360) to follower displacement, velocity, acceleration and
// jerk. Rise and fall use the cycloidal law
//
//	s(β) = h·(β − sin(2πβ)/2π)
//
// which has zero velocity and zero acceleration at both segment ends, so the
// follower never sees an acceleration step at a segment boundary.
//
// Time derivatives are taken by chaining through the cam rate: every order
// multiplies by one more factor of ω·π/180 and one more 1/segment.
//
// # Thread Safety
//
// A Law is immutable after [New]. All methods may be called concurrently;
// the batch methods fan out over [ParallelFor].
package motion
