// internal/common/apperr/errors.go
// Error taxonomy shared by the client engine

package apperr

import (
	"errors"
	"fmt"
)

// FetchError is a network or server failure on a read.
// Prior state is always retained by the caller.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError is a failure on a write (swipe, chat send, acknowledgments).
type SubmitError struct {
	Op  string
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s: submit failed: %v", e.Op, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// ValidationError is raised client side and never reaches the network.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Fetch wraps err as a FetchError. A nil err stays nil.
func Fetch(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Op: op, Err: err}
}

// Submit wraps err as a SubmitError. A nil err stays nil.
func Submit(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SubmitError{Op: op, Err: err}
}

// Validation wraps err as a ValidationError. A nil err stays nil.
func Validation(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Op: op, Err: err}
}

func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

func IsSubmit(err error) bool {
	var target *SubmitError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
