// Package optim searches (max lift, rise, fall) for the cam design that
// minimizes a kinematic objective while every other baseline field stays
// fixed.
//
// Candidates that fail validation score [InfeasiblePenalty]; feasible
// candidates add [PenaltyWeight] times the excess over each violated limit.
// Three methods are available: a seeded differential evolution, an L-BFGS
// search started from the baseline, and an exhaustive grid.
//
//	o, _ := optim.New(cam.Default())
//	res, err := o.Optimize(ctx, optim.DefaultBounds(), optim.RMSAcceleration, optim.DifferentialEvolution)
//	var failure *optim.Failure
//	if errors.As(err, &failure) {
//	    // res is still populated, res.Success is false
//	}
package optim
