package optim

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
)

const (
	// PenaltyWeight scales the excess over each violated kinematic limit.
	PenaltyWeight = 1000.0
	// InfeasiblePenalty is the score of a candidate that fails validation.
	InfeasiblePenalty = 1e6
)

type Objective string

const (
	RMSAcceleration Objective = "rms_acceleration"
	MaxJerk         Objective = "max_jerk"
	// Energy is RMS acceleration squared, a proxy for the work done
	// against the follower's inertia.
	Energy Objective = "energy"
)

var objectives = map[Objective]func(*analysis.Result) float64{
	RMSAcceleration: func(r *analysis.Result) float64 { return r.RMSAcceleration },
	MaxJerk:         func(r *analysis.Result) float64 { return r.MaxJerk },
	Energy:          func(r *analysis.Result) float64 { return r.RMSAcceleration * r.RMSAcceleration },
}

func ParseObjective(s string) (Objective, error) {
	o := Objective(s)
	if _, ok := objectives[o]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownObjective, s)
	}
	return o, nil
}

// Objectives lists the supported objective names in sorted order.
func Objectives() []string {
	names := make([]string, 0, len(objectives))
	for o := range objectives {
		names = append(names, string(o))
	}
	sort.Strings(names)
	return names
}

// Penalty is PenaltyWeight times the excess over every violated limit.
func Penalty(r *analysis.Result) float64 {
	p := r.Params
	penalty := 0.0
	if r.VelocityViolation {
		penalty += PenaltyWeight * (r.MaxVelocity - p.VelocityLimit)
	}
	if r.AccelerationViolation {
		penalty += PenaltyWeight * (r.MaxAcceleration - p.AccelerationLimit)
	}
	if r.JerkViolation {
		penalty += PenaltyWeight * (r.MaxJerk - p.JerkLimit)
	}
	return penalty
}

// Evaluate scores the baseline with (max lift, rise, fall) replaced by x.
// A candidate that fails validation scores InfeasiblePenalty; any other
// error is returned.
func (o *Optimizer) Evaluate(x [3]float64, objective Objective) (float64, error) {
	score, ok := objectives[objective]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, objective)
	}

	p, err := o.base.WithVector(x)
	if err != nil {
		if cam.IsValidation(err) {
			o.logger.Debug("infeasible candidate",
				zap.Float64s("x", x[:]),
				zap.Error(err),
			)
			return InfeasiblePenalty, nil
		}
		return 0, err
	}

	res, err := analysis.Analyze(p, analysis.WithSamples(o.samples))
	if err != nil {
		return 0, err
	}
	return score(res) + Penalty(res), nil
}
