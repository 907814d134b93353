package optim

import (
	"context"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

const gradientThreshold = 1e-9

func minimizeLocal(ctx context.Context, o *Optimizer, p *problem) (outcome, error) {
	return localSearch(ctx, o, p, p.start())
}

// localSearch runs L-BFGS from x0. The box is enforced by searching over
// u with x = lo + (hi-lo)(1+sin u)/2, so every iterate is feasible for the
// box by construction. The returned point is the best one evaluated.
func localSearch(ctx context.Context, o *Optimizer, p *problem, x0 [3]float64) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}
	if _, err := p.eval(x0); err != nil {
		return outcome{}, err
	}
	// gonum reads a zero iteration limit as unlimited
	if o.maxIter == 0 {
		out := outcome{message: optimize.IterationLimit.String()}
		out.x, out.fun = p.best()
		return out, nil
	}

	f := func(u []float64) float64 {
		v, _ := p.eval(fromSine(p.bounds, u))
		return v
	}
	prob := optimize.Problem{
		Func: f,
		Grad: func(grad, u []float64) {
			fd.Gradient(grad, f, u, &fd.Settings{Formula: fd.Central, Concurrent: true})
		},
		Status: func() (optimize.Status, error) {
			if err := p.failure(); err != nil {
				return optimize.Failure, err
			}
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: gradientThreshold,
		MajorIterations:   o.maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 10,
		},
	}

	res, err := optimize.Minimize(prob, toSine(p.bounds, x0), settings, &optimize.LBFGS{})
	if perr := p.failure(); perr != nil {
		return outcome{}, perr
	}
	if cerr := ctx.Err(); cerr != nil {
		return outcome{}, cerr
	}

	out := outcome{message: optimize.NotTerminated.String()}
	status := optimize.NotTerminated
	if res != nil {
		status = res.Status
		out.iterations = res.Stats.MajorIterations
		out.message = status.String()
	}
	out.success = err == nil && converged(status)
	if err != nil {
		out.message = err.Error()
	}
	out.x, out.fun = p.best()
	return out, nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold,
		optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// toSine inverts fromSine, picking u in [-pi/2, pi/2].
func toSine(b Bounds, x [3]float64) []float64 {
	u := make([]float64, len(b))
	for i, iv := range b {
		w := iv.Width()
		if w <= 0 {
			continue
		}
		t := 2*(x[i]-iv.Min)/w - 1
		u[i] = math.Asin(math.Max(-1, math.Min(1, t)))
	}
	return u
}

func fromSine(b Bounds, u []float64) [3]float64 {
	var x [3]float64
	for i, iv := range b {
		x[i] = iv.Clamp(iv.Min + iv.Width()*(1+math.Sin(u[i]))/2)
	}
	return x
}
