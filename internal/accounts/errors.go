package accounts

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("username already exists")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrBootstrapClosed = errors.New("bootstrap already completed")
	ErrUnauthorized    = errors.New("unauthorized")
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
