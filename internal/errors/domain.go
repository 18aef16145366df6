package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports input rejected before anything was sent.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message, Cause: cause}
}

// NotFoundError reports that the remote collection has no such record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PreconditionError reports an operation invoked in the wrong state.
type PreconditionError struct {
	Op     string
	Reason string
	Cause  error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(op, reason string, cause error) *PreconditionError {
	return &PreconditionError{Op: op, Reason: reason, Cause: cause}
}

// GatewayError reports a failed call to the remote collection. Status is 0
// when no response arrived.
type GatewayError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
	Cause    error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, msg)
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.Status, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Temporary reports whether the call may succeed if repeated.
func (e *GatewayError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsPreconditionError checks if an error is a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// AsGatewayError extracts a GatewayError from an error chain.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}
