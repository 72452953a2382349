// Package errors provides structured error types for panetree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the TUI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// The layout engine itself reports plain sentinel errors (see package
// layout); the workspace layer translates those into the codes below.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / NOT_A_LEAF / WORKSPACE_NOT_FOUND: Stale or wrong references
//   - CONFLICT: Concurrent writers on one workspace
//   - CORRUPT_TREE: A stored or computed tree violates its invariants
//   - STORAGE_ERROR / INTERNAL_ERROR: Unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPosition, "unknown position %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidPosition) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save workspace %s", name)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidID       Code = "INVALID_ID"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidPosition Code = "INVALID_POSITION"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Reference errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeNotALeaf          Code = "NOT_A_LEAF"
	ErrCodeWorkspaceNotFound Code = "WORKSPACE_NOT_FOUND"

	// State errors
	ErrCodeConflict    Code = "CONFLICT"
	ErrCodeCorruptTree Code = "CORRUPT_TREE"

	// Internal errors
	ErrCodeStorage     Code = "STORAGE_ERROR"
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
