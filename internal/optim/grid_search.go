package optim

import (
	"context"
	"runtime"

	"gonum.org/v1/gonum/floats"
)

// GridSearch enumerates an evenly spaced lattice over a box.
type GridSearch struct {
	axes [][]float64
}

// NewGridSearch spaces points values per axis from Min to Max inclusive.
// A degenerate axis contributes its single value.
func NewGridSearch(bounds Bounds, points int) *GridSearch {
	if points < 2 {
		points = 2
	}
	axes := make([][]float64, len(bounds))
	for i, iv := range bounds {
		if iv.Width() == 0 {
			axes[i] = []float64{iv.Min}
			continue
		}
		axes[i] = floats.Span(make([]float64, points), iv.Min, iv.Max)
		for j, v := range axes[i] {
			axes[i][j] = iv.Clamp(v)
		}
	}
	return &GridSearch{axes: axes}
}

// Candidates returns every lattice point, last axis varying fastest.
func (g *GridSearch) Candidates() [][3]float64 {
	var out [][3]float64
	g.searchRecursive(0, [3]float64{}, &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current [3]float64, out *[][3]float64) {
	if depth == len(g.axes) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.axes[depth] {
		current[depth] = val
		g.searchRecursive(depth+1, current, out)
	}
}

// gridSearch scores the baseline and the whole lattice, one batch at a
// time so a cancelled context stops it between batches.
func gridSearch(ctx context.Context, o *Optimizer, p *problem) (outcome, error) {
	candidates := append([][3]float64{p.start()}, NewGridSearch(p.bounds, o.gridPoints).Candidates()...)

	batch := 16 * runtime.GOMAXPROCS(0)
	for start := 0; start < len(candidates); start += batch {
		if err := ctx.Err(); err != nil {
			return outcome{}, err
		}
		end := min(start+batch, len(candidates))
		if _, err := p.evaluateAll(candidates[start:end]); err != nil {
			return outcome{}, err
		}
	}

	x, f := p.best()
	return outcome{
		x:          x,
		fun:        f,
		success:    true,
		message:    "Grid search completed.",
		iterations: len(candidates),
	}, nil
}
