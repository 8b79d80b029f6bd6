package service

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	reasonInvalidCredentials = "username or password missing, or password not alphanumeric"
	reasonUsernameTaken      = "username already taken"
)

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure. Op names the failed operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
