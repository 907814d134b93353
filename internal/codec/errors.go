package codec

import (
	"errors"
	"fmt"
)

var (
	ErrParse         = errors.New("codec: malformed document")
	ErrMissingField  = errors.New("codec: missing field")
	ErrFieldType     = errors.New("codec: field is not a number")
	ErrUnknownField  = errors.New("codec: unknown field")
	ErrUnknownFormat = errors.New("codec: unknown format")
)

// ParseError is a syntax failure. No field was looked at.
type ParseError struct {
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("codec: invalid %s at line %d, column %d: %v", e.Format, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("codec: invalid %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

type FieldErrorKind int

const (
	FieldMissing FieldErrorKind = iota
	FieldType
	FieldUnknown
)

func (k FieldErrorKind) String() string {
	switch k {
	case FieldMissing:
		return "missing"
	case FieldType:
		return "type"
	case FieldUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// FieldError is a well formed document with a missing, mistyped or
// unexpected field.
type FieldError struct {
	Field string
	Kind  FieldErrorKind
	Value any
}

func (e *FieldError) Error() string {
	switch e.Kind {
	case FieldMissing:
		return fmt.Sprintf("codec: missing required field %s", e.Field)
	case FieldType:
		return fmt.Sprintf("codec: field %s must be a number, got %T", e.Field, e.Value)
	default:
		return fmt.Sprintf("codec: unknown field %s", e.Field)
	}
}

func (e *FieldError) Unwrap() error {
	switch e.Kind {
	case FieldMissing:
		return ErrMissingField
	case FieldType:
		return ErrFieldType
	default:
		return ErrUnknownField
	}
}
