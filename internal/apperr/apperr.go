// Package apperr holds the error kinds shared by stores, services and
// handlers. Callers wrap one of the sentinels and classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrExternalService  = errors.New("external service failure")
)

// FieldError is a validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a FieldError.
func Invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// DuplicateError reports which unique key collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return e.Field + " already exists"
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateKey
}

// NotFound wraps ErrNotFound with the missing resource name, e.g. "Message not found".
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Unavailable wraps a driver error as ErrStoreUnavailable.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// External wraps a collaborator failure (email, third-party API) as ErrExternalService.
func External(service string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalService, service, err)
}
