// Package errors provides structured error types for regionroute.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP layer and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the failure taxonomy of the routing core:
//   - INVALID_*: malformed input (coordinates, polygons, graphs)
//   - PRECONDITION: a caller broke an operation's precondition
//   - INVARIANT_VIOLATION: an algorithm detected an inconsistent graph
//   - NOT_FOUND / NO_ROUTE: missing data or no admissible route
//   - UNSUPPORTED: input the router does not implement yet
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPolygon, "polygon needs 3 vertices, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidPolygon) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGraph, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPolygon    Code = "INVALID_POLYGON"
	ErrCodeInvalidGraph      Code = "INVALID_GRAPH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Contract errors
	ErrCodePrecondition       Code = "PRECONDITION"
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNoRoute      Code = "NO_ROUTE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// NotImplemented returns an UNSUPPORTED error for a feature the router
// recognises but does not implement.
func NotImplemented(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeUnsupported,
		Message: "not implemented: " + fmt.Sprintf(format, args...),
	}
}
