// Package apperrors defines the error classes of fibmeter and their mapping
// to process exit codes. Every type unwraps to its cause so that callers can
// use errors.Is and errors.As across package boundaries.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorMismatch = 3
	// ExitErrorConfig covers bad flags, bad config files and invalid
	// arguments such as a negative Fibonacci index.
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130
)

// ConfigError is a problem with the flags, environment or config file.
type ConfigError struct {
	Message string
	Cause   error
}

func (e ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e ConfigError) Unwrap() error { return e.Cause }

// NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError is an invalid argument, from the command line or from an
// HTTP request.
type ValidationError struct {
	Field   string
	Message string
	Value   any
	// Cause is the sentinel behind the failure, for example
	// fibonacci.ErrNegativeIndex.
	Cause error
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e ValidationError) Unwrap() error { return e.Cause }

func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// CalculationError wraps a failure of one algorithm.
type CalculationError struct {
	Algorithm string
	N         uint64
	Cause     error
}

func (e CalculationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s failed for n=%d: %v", e.Algorithm, e.N, e.Cause)
}

func (e CalculationError) Unwrap() error { return e.Cause }

// MismatchError reports algorithms that returned different values for the
// same index.
type MismatchError struct {
	N          uint64
	Algorithms []string
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("results for F(%d) differ between %s", e.N, strings.Join(e.Algorithms, ", "))
}

// ServerError is a failure of the HTTP server.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e ServerError) Unwrap() error { return e.Cause }

func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError prefixes err with a formatted context message. It returns nil for
// a nil err.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from a canceled or expired
// context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	var (
		cfgErr      ConfigError
		validErr    ValidationError
		mismatchErr MismatchError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &mismatchErr):
		return ExitErrorMismatch
	case errors.As(err, &cfgErr), errors.As(err, &validErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}
