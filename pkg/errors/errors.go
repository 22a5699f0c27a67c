package errors

import (
	"errors"
	"fmt"
)

// InternalServerErrorMessage is the only detail a client sees when a request fails.
const InternalServerErrorMessage = "Internal Server Error"

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError reports that no record exists for the given key.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: id=%s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AlreadyExistsError is returned when a create collides with an existing key.
type AlreadyExistsError struct {
	Resource string
	ID       string
	Err      error
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, id string, err error) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		ID:       id,
		Err:      err,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: id=%s", e.Resource, e.ID)
}

// Unwrap returns the wrapped store error
func (e *AlreadyExistsError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err or anything it wraps is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err or anything it wraps is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
