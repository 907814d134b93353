package optim

import (
	"context"
	"fmt"
	"sort"
)

type Method string

const (
	// DifferentialEvolution is the seeded global population search.
	DifferentialEvolution Method = "differential_evolution"
	// Minimize is the bounded local gradient search from the baseline.
	Minimize Method = "minimize"
	// Grid evaluates an evenly spaced lattice over the box.
	Grid Method = "grid"
)

type searchFunc func(ctx context.Context, o *Optimizer, p *problem) (outcome, error)

var methods = map[Method]searchFunc{
	DifferentialEvolution: differentialEvolution,
	Minimize:              minimizeLocal,
	Grid:                  gridSearch,
}

func lookup(m Method) (searchFunc, error) {
	fn, ok := methods[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	return fn, nil
}

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if _, err := lookup(m); err != nil {
		return "", err
	}
	return m, nil
}

// Methods lists the supported method names in sorted order.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}
