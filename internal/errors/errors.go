// Package errors provides a structured error type hierarchy for the histwipe CLI.
//
// This package defines base error types for common error conditions, wrapped error
// types that add contextual information, and helper functions for error wrapping
// and type checking.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - file or resource not found
//   - ErrFormat - malformed input (date, regex, history line)
//   - ErrInvalid - validation failed
//   - ErrPermission - insufficient permissions
//   - ErrIO - file I/O error
//   - ErrCanceled - user canceled operation
//
// Wrapped error types (add context):
//   - ParseError{Input, Err} - input parsing errors
//   - PathError{Op, Path, Err} - file operation errors
//
// # Usage
//
//	// Use sentinel errors directly
//	return errors.ErrNotFound
//
//	// Wrap with context using Wrap
//	return errors.Wrap(err, "resolveWindow")
//
//	// Use structured error types
//	return &errors.ParseError{Input: "2024-13-40", Err: errors.ErrFormat}
//
//	// Check error types
//	if errors.IsFormat(err) {
//	    // handle malformed input
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a file or resource was not found.
	ErrNotFound = baseError("not found")

	// ErrFormat indicates malformed input, such as an unparseable date
	// string or an invalid regular expression.
	ErrFormat = baseError("malformed input")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrPermission indicates insufficient permissions.
	ErrPermission = baseError("permission denied")

	// ErrIO indicates a file I/O error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// ParseError represents an error that occurred while parsing user input,
// such as a date expression or a filter pattern.
type ParseError struct {
	// Input is the offending input text.
	Input string
	// Err is the underlying error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("parse %q: %s", e.Input, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PathError represents an error that occurred during a file operation.
type PathError struct {
	// Op is the operation being performed (e.g., "open", "rename", "shred").
	Op string
	// Path is the file path involved (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *PathError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	return &wrappedError{op: op, err: err}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFormat reports whether err is or wraps ErrFormat.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsPermission reports whether err is or wraps ErrPermission.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsParseError reports whether err can be typed as a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsPathError reports whether err can be typed as a *PathError.
func AsPathError(err error) (*PathError, bool) {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
