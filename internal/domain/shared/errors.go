// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors for checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "member", "submission", "report"
	Op      string // Operation that failed, e.g., "Register", "Record"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Command-surface errors. Every one of these is recovered at the handler
// boundary and turned into a user-facing reply; none terminate the process.
var (
	ErrNotRegistered     = NewDomainError("member", "Check", ErrNotFound, "member is not registered")
	ErrAlreadyRegistered = NewDomainError("member", "Register", ErrAlreadyExists, "member already registered")
	ErrMissingAttachment = NewDomainError("submission", "Submit", ErrInvalidInput, "submission requires a proof attachment")
	ErrReplyTimeout      = NewDomainError("member", "Register", ErrTimeout, "reply not received in time")
	ErrPermissionDenied  = NewDomainError("command", "Authorize", ErrForbidden, "administrator command")
	ErrNoDataForToday    = NewDomainError("report", "NotCompleted", ErrNotFound, "no submissions recorded today")
	ErrUploadFailure     = NewDomainError("artifact", "Rehost", ErrExternalService, "artifact upload failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsUserFacing reports whether the error maps to a reply the invoking
// user should see, as opposed to an internal fault that is only logged.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrExternalService)
}
