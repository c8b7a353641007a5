package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports client-caused input problems: malformed identifiers,
// unknown enum tokens, or search criteria that fail whitelist/type checks.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports that no entity or snapshot matches a resolved key,
// including an unmatched canonical server during a feed update.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ParsingError reports a malformed external feed payload.
type ParsingError struct {
	Message string
	Cause   error
}

func (e *ParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParsingError) Unwrap() error {
	return e.Cause
}

// ConnectivityError reports that the external feed could not be reached.
type ConnectivityError struct {
	Message string
	Cause   error
}

func (e *ConnectivityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConnectivityError) Unwrap() error {
	return e.Cause
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewNotFound builds a NotFoundError from a format string.
func NewNotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// NewParsing builds a ParsingError wrapping the underlying cause.
func NewParsing(msg string, cause error) error {
	return &ParsingError{Message: msg, Cause: cause}
}

// NewConnectivity builds a ConnectivityError wrapping the underlying cause.
func NewConnectivity(msg string, cause error) error {
	return &ConnectivityError{Message: msg, Cause: cause}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsParsing reports whether err is a ParsingError.
func IsParsing(err error) bool {
	var target *ParsingError
	return errors.As(err, &target)
}

// IsConnectivity reports whether err is a ConnectivityError.
func IsConnectivity(err error) bool {
	var target *ConnectivityError
	return errors.As(err, &target)
}

// StatusCode maps a domain error to the HTTP status the handlers respond with.
func StatusCode(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsParsing(err), IsConnectivity(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
