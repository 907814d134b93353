package optim

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/san-kum/camkin/internal/motion"
)

// problem is one search run: the box, the objective and everything that
// was evaluated so far. Safe for concurrent use.
type problem struct {
	o         *Optimizer
	bounds    Bounds
	objective Objective

	evals atomic.Int64

	mu    sync.Mutex
	err   error
	bestX [3]float64
	bestF float64
}

func newProblem(o *Optimizer, bounds Bounds, objective Objective) *problem {
	return &problem{
		o:         o,
		bounds:    bounds,
		objective: objective,
		bestF:     math.Inf(1),
	}
}

// eval scores x. Candidates outside the box are never scored.
func (p *problem) eval(x [3]float64) (float64, error) {
	if !p.bounds.Contains(x) {
		err := fmt.Errorf("optim: candidate %v outside search box", x)
		p.fail(err)
		return math.Inf(1), err
	}

	p.evals.Add(1)
	if p.o.hook != nil {
		p.o.hook(append([]float64(nil), x[:]...))
	}

	f, err := p.o.Evaluate(x, p.objective)
	if err != nil {
		p.fail(err)
		return math.Inf(1), err
	}

	p.mu.Lock()
	if isBetter(f, x, p.bestF, p.bestX) {
		p.bestF = f
		p.bestX = x
	}
	p.mu.Unlock()
	return f, nil
}

func (p *problem) fail(err error) {
	p.mu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.mu.Unlock()
}

func (p *problem) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// best is the lowest scoring candidate seen so far.
func (p *problem) best() ([3]float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bestX, p.bestF
}

func (p *problem) evaluations() int {
	return int(p.evals.Load())
}

// start is the baseline's searched parameters clamped into the box.
func (p *problem) start() [3]float64 {
	return p.bounds.Clamp(p.o.base.Vector())
}

// evaluateAll scores every candidate concurrently and returns the scores in
// candidate order.
func (p *problem) evaluateAll(candidates [][3]float64) ([]float64, error) {
	scores := make([]float64, len(candidates))
	motion.ParallelFor(len(candidates), 1, func(start, end int) {
		for i := start; i < end; i++ {
			scores[i], _ = p.eval(candidates[i])
		}
	})
	if err := p.failure(); err != nil {
		return nil, err
	}
	return scores, nil
}
