// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeValidation indicates local input failed a precondition
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeIdentity indicates the device identity could not be computed
	TypeIdentity Type = "IDENTITY_ERROR"

	// TypeTransport indicates a network failure or an unreadable response
	TypeTransport Type = "TRANSPORT_ERROR"

	// TypeRemote indicates the backend answered with a non-success status
	TypeRemote Type = "REMOTE_ERROR"

	// TypeTrialRefresh indicates the post-analysis trial status refresh failed
	TypeTrialRefresh Type = "TRIAL_REFRESH_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// GenericMessage is shown whenever no specific message may be surfaced.
const GenericMessage = "Analysis failed"

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Status  int                    `json:"status,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasType checks if the error is of a specific type
func (e *Error) HasType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithStatus records the HTTP status that produced the error
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType checks if an error chain contains an error of a specific type
func IsType(err error, t Type) bool {
	if e, ok := As(err); ok {
		return e.HasType(t)
	}
	return false
}

// UserMessage reduces any error to the one string a visitor may see.
// Only validation and remote errors carry a message meant for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(err)
	if !ok {
		return GenericMessage
	}
	switch e.Type {
	case TypeValidation, TypeRemote:
		if e.Message != "" {
			return e.Message
		}
	}
	return GenericMessage
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// Identity creates an identity error
func Identity(message string, cause error) *Error {
	return Wrap(TypeIdentity, message, cause)
}

// Transport creates a transport error
func Transport(message string, cause error) *Error {
	return Wrap(TypeTransport, message, cause)
}

// Remote creates a remote error for the given HTTP status
func Remote(status int, message string) *Error {
	return New(TypeRemote, message).WithStatus(status)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
