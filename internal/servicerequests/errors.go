package servicerequests

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrQueue        = errors.New("provisioning queue unavailable")
	// ErrNotProvisioning rejects worker results for a request that is not
	// waiting on a provisioning run.
	ErrNotProvisioning = errors.New("request is not provisioning")
)

// ValidationError carries a client-facing message and matches ErrInvalidInput.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
