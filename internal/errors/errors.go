// Package errors provides structured error types and exit codes for pytesthl.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the pytesthl command.
const (
	ExitSuccess     = 0 // Success
	ExitRuntime     = 1 // Runtime error (unreadable input, write failure, etc.)
	ExitConfigError = 2 // Configuration error (invalid style table, bad flag, etc.)
	ExitMismatch    = 3 // The two renderings disagree
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindInput
	KindUnrecognized
	KindMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindUnrecognized:
		return "unrecognized"
	case KindMismatch:
		return "mismatch"
	default:
		return "runtime"
	}
}

// Error is the base error type for pytesthl.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int   // 1-based transcript line, 0 when not applicable
	Cause   error // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindMismatch:
		return ExitMismatch
	default:
		return ExitRuntime
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

// Input wraps a failure to read or decode input.
func Input(err error, message string) *Error {
	return &Error{
		Kind:    KindInput,
		Message: message,
		Cause:   err,
	}
}

// Unrecognized reports a transcript line that looked like a known shape
// but did not match its pattern.
func Unrecognized(line int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindUnrecognized,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// Mismatch reports two renderings that differ after normalization.
func Mismatch(diff string) *Error {
	return &Error{
		Kind:    KindMismatch,
		Message: "renderings differ after normalization\n" + diff,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitRuntime
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == kind
}
