package optim

import (
	"errors"
	"fmt"
)

var (
	ErrOptimization     = errors.New("optim: search did not converge")
	ErrInvalidBounds    = errors.New("optim: invalid bounds")
	ErrUnknownObjective = errors.New("optim: unknown objective")
	ErrUnknownMethod    = errors.New("optim: unknown method")
)

// Failure is returned together with a Result when the numerical method
// stopped without meeting its own success criterion.
type Failure struct {
	Method     Method
	Message    string
	Iterations int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("optim: %s failed after %d iterations: %s", f.Method, f.Iterations, f.Message)
}

func (f *Failure) Unwrap() error {
	return ErrOptimization
}
