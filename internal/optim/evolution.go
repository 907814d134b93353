package optim

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	mutationMin   = 0.5
	mutationMax   = 1.0
	recombination = 0.7
	// minPopulation keeps three distinct partners available for every member.
	minPopulation = 5

	msgConverged = "Optimization terminated successfully."
	msgMaxIter   = "Maximum number of iterations has been exceeded."
)

// differentialEvolution runs DE/best/1/bin over the unit cube mapped onto
// the box. Random draws happen on this goroutine only; a generation's
// trial vectors are scored concurrently once all of them exist.
func differentialEvolution(ctx context.Context, o *Optimizer, p *problem) (outcome, error) {
	const dim = len(axisNames)

	rng := rand.New(rand.NewSource(o.seed))
	n := o.popSize * dim
	if n < minPopulation {
		n = minPopulation
	}

	pop := latinHypercube(rng, n, dim)
	xs := toBox(p.bounds, pop)
	x0 := p.start()
	pop[0] = p.bounds.toUnit(x0)
	xs[0] = x0

	energies, err := p.evaluateAll(xs)
	if err != nil {
		return outcome{}, err
	}
	best := floats.MinIdx(energies)

	out := outcome{message: msgMaxIter}
	for gen := 1; gen <= o.maxIter; gen++ {
		if err := ctx.Err(); err != nil {
			return outcome{}, err
		}

		scale := mutationMin + rng.Float64()*(mutationMax-mutationMin)
		trials := make([][]float64, n)
		for i := range trials {
			trials[i] = best1bin(rng, pop, i, best, scale)
		}

		trialXs := toBox(p.bounds, trials)
		trialEnergies, err := p.evaluateAll(trialXs)
		if err != nil {
			return outcome{}, err
		}
		for i, e := range trialEnergies {
			if e <= energies[i] {
				pop[i] = trials[i]
				xs[i] = trialXs[i]
				energies[i] = e
			}
		}
		best = floats.MinIdx(energies)
		out.iterations = gen

		mean, std := stat.PopMeanStdDev(energies, nil)
		o.logger.Debug("generation",
			zap.Int("generation", gen),
			zap.Float64("best", energies[best]),
			zap.Float64("mean", mean),
			zap.Float64("std", std),
		)
		if std <= o.tol*math.Abs(mean) {
			out.success = true
			out.message = msgConverged
			break
		}
	}

	out.x = xs[best]
	out.fun = energies[best]

	if o.polish {
		polished, err := localSearch(ctx, o, p, out.x)
		if err != nil {
			return outcome{}, err
		}
		if polished.fun < out.fun {
			out.x = polished.x
			out.fun = polished.fun
		}
	}
	return out, nil
}

// latinHypercube places n points in the unit cube so that every axis has
// exactly one point in each of its n strata.
func latinHypercube(rng *rand.Rand, n, dim int) [][]float64 {
	pop := make([][]float64, n)
	for i := range pop {
		pop[i] = make([]float64, dim)
	}
	for d := 0; d < dim; d++ {
		perm := rng.Perm(n)
		for i := range pop {
			pop[i][d] = (float64(perm[i]) + rng.Float64()) / float64(n)
		}
	}
	return pop
}

// best1bin builds the trial vector for member i: best + scale*(r1 - r2),
// binomially crossed with member i. Components that leave the unit cube
// are redrawn uniformly.
func best1bin(rng *rand.Rand, pop [][]float64, i, best int, scale float64) []float64 {
	n := len(pop)
	dim := len(pop[i])

	r1 := rng.Intn(n - 1)
	if r1 >= i {
		r1++
	}
	r2 := r1
	for r2 == r1 || r2 == i {
		r2 = rng.Intn(n)
	}

	trial := make([]float64, dim)
	copy(trial, pop[i])
	fill := rng.Intn(dim)
	for d := 0; d < dim; d++ {
		if rng.Float64() < recombination || d == fill {
			trial[d] = pop[best][d] + scale*(pop[r1][d]-pop[r2][d])
		}
	}
	for d, v := range trial {
		if v < 0 || v > 1 {
			trial[d] = rng.Float64()
		}
	}
	return trial
}

func toBox(b Bounds, unit [][]float64) [][3]float64 {
	out := make([][3]float64, len(unit))
	for i, u := range unit {
		out[i] = b.fromUnit(u)
	}
	return out
}
