// Package cam defines the design record for a rise/dwell/fall cam profile.
//
// A [Params] value holds the geometry, segment durations, operating speed and
// soft kinematic limits of one cam. Values are built with [New], which
// recomputes the derived total duration and rejects physically infeasible
// input with a [*ValidationError]:
//
//	p, err := cam.New(cam.Params{
//	    BaseCircleRadius: 25, MaxLift: 10,
//	    RiseDuration: 90, DwellDuration: 45, FallDuration: 90,
//	    JerkLimit: 1000, AccelerationLimit: 500, VelocityLimit: 100,
//	    RPM: 3000,
//	})
//
// # Units
//
// Lengths are in the caller's unit (mm in practice), angles in degrees and
// speed in revolutions per minute. Conversions between them live in units.go
// and nowhere else.
package cam
