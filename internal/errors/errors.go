// Package errors defines the domain errors returned by services.
// Handlers translate the Code of a DomainError into an HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
)

// DomainError is a rejected operation surfaced to the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Withf returns a copy of e with extra detail appended to the message.
// The copy still matches e under errors.Is.
func (e *DomainError) Withf(format string, args ...interface{}) error {
	return &detailedError{base: e, detail: fmt.Sprintf(format, args...)}
}

type detailedError struct {
	base   *DomainError
	detail string
}

func (d *detailedError) Error() string {
	return d.base.Message + ": " + d.detail
}

func (d *detailedError) Unwrap() error {
	return d.base
}

// As extracts the DomainError carried by err, if any.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

var (
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "operation not permitted for this user",
	}
	ErrInvalidInput = &DomainError{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}
)
