package shared

import (
	"errors"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies still compare equal to the sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists    = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState     = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrRequiredField    = NewDomainError("REQUIRED_FIELD_MISSING", "Required field missing")
	ErrDuplicateRequest = NewDomainError("DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
)

// NewRequiredFieldError reports the fields a create or update form left empty.
func NewRequiredFieldError(fields ...string) *DomainError {
	return &DomainError{
		Code:    ErrRequiredField.Code,
		Message: "required field missing: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// NewNotFoundError names the missing record.
func NewNotFoundError(kind, id string) *DomainError {
	return NewDomainError(ErrNotFound.Code, kind+" "+id+" not found")
}
