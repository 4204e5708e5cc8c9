// Package errors provides structured error types for topograph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the engine
//   - Machine-readable error codes for programmatic handling
//   - Operator-friendly diagnostic messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND*: Resource not found
//   - Topology codes (MULTI_ROOT_GRAPH, DANGLING_EDGE, ...): local, non-fatal
//     faults in a graph snapshot. The engine degrades instead of aborting, so
//     these usually surface as diagnostics rather than returned errors.
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStaleFocusNode, "node %q is not in the current snapshot", id)
//	if errors.Is(err, errors.ErrCodeStaleFocusNode) {
//	    // ignore the hover
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSource, origErr, "load snapshot from %s", path)
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
	ErrCodeInvalidNodeID   Code = "INVALID_NODE_ID"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidKey      Code = "INVALID_KEY"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeViewerNotFound Code = "VIEWER_NOT_FOUND"

	// Topology faults. These are local to a snapshot and never fatal.
	ErrCodeMultiRootGraph   Code = "MULTI_ROOT_GRAPH"
	ErrCodeCyclicHierarchy  Code = "CYCLIC_HIERARCHY"
	ErrCodeDanglingEdge     Code = "DANGLING_EDGE"
	ErrCodeDuplicateNode    Code = "DUPLICATE_NODE"
	ErrCodeDuplicateEdge    Code = "DUPLICATE_EDGE"
	ErrCodeUnknownEdgeKind  Code = "UNKNOWN_EDGE_KIND"
	ErrCodeStaleFocusNode   Code = "STALE_FOCUS_NODE"
	ErrCodeNoSnapshot       Code = "NO_SNAPSHOT"
	ErrCodeSource           Code = "SOURCE_ERROR"
	ErrCodeRenderFailed     Code = "RENDER_FAILED"
	ErrCodeLayoutIncomplete Code = "LAYOUT_INCOMPLETE"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsTopologyFault reports whether err carries one of the snapshot-local
// topology codes. Callers treat these as diagnostics, not failures.
func IsTopologyFault(err error) bool {
	switch GetCode(err) {
	case ErrCodeMultiRootGraph, ErrCodeCyclicHierarchy, ErrCodeDanglingEdge,
		ErrCodeDuplicateNode, ErrCodeDuplicateEdge, ErrCodeUnknownEdgeKind, ErrCodeStaleFocusNode:
		return true
	}
	return false
}
