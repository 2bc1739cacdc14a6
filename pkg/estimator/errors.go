package estimator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for negative, non-finite or out-of-range
	// quantities.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDivisionUndefined is returned when a percentage is requested
	// against a zero baseline.
	ErrDivisionUndefined = errors.New("division undefined")
)

// InputError describes which input was rejected. It matches ErrInvalidInput
// under errors.Is.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidInput, e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field string, value float64, reason string) error {
	return &InputError{Field: field, Value: value, Reason: reason}
}
