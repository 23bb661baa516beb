// Package apperr defines the error taxonomy shared by repositories, services
// and transports.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed field on a mutating call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError wraps a failure of the store or of a notification transport.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError. A nil err stays nil and errors that
// are already classified pass through untouched.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || IsValidation(err) || IsUpstream(err) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

// NotFound annotates ErrNotFound with the kind of row that was missing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
