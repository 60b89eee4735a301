package controller

import "errors"

// ErrBusy is returned when a mutating call overlaps an outstanding call for
// the same resource.
var ErrBusy = errors.New("operation already in progress")

// ErrInvalidState is returned when an operation is not valid in the current
// state of a workflow.
var ErrInvalidState = errors.New("operation not valid in current state")

// ValidationError reports a precondition failure detected before any network
// call was issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
