package cam

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every [*ValidationError].
var ErrValidation = errors.New("cam: invalid parameters")

// ValidationError reports a physically infeasible parameter.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cam: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsValidation reports whether err carries a [*ValidationError].
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
