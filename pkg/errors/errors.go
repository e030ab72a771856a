/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeValidation indicates the deployment specification failed
	// schema or semantic validation.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeSourceAuth indicates authentication against a source
	// endpoint failed.
	ErrCodeSourceAuth ErrorCode = "SOURCE_AUTH"
	// ErrCodeSourceUnreachable indicates a source endpoint could not be
	// reached, including after bounded retries.
	ErrCodeSourceUnreachable ErrorCode = "SOURCE_UNREACHABLE"
	// ErrCodeSourceDigestMismatch indicates resolved source content did
	// not match its declared integrity digest.
	ErrCodeSourceDigestMismatch ErrorCode = "SOURCE_DIGEST_MISMATCH"
	// ErrCodeSourceMissingPath indicates a path-based source location
	// does not exist or is not readable.
	ErrCodeSourceMissingPath ErrorCode = "SOURCE_MISSING_PATH"
	// ErrCodeRenderMissingInput indicates manifest rendering was missing
	// a required input value.
	ErrCodeRenderMissingInput ErrorCode = "RENDER_MISSING_INPUT"
	// ErrCodeRenderTemplate indicates a template failed to parse or execute.
	ErrCodeRenderTemplate ErrorCode = "RENDER_TEMPLATE"
	// ErrCodeStateCorrupt indicates a generation state file could not be
	// parsed. State integrity is never guessed at; this is fatal to the run.
	ErrCodeStateCorrupt ErrorCode = "STATE_CORRUPT"
	// ErrCodeStateConflict indicates a concurrent writer was detected on
	// an output directory.
	ErrCodeStateConflict ErrorCode = "STATE_CONFLICT"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeRateLimitExceeded indicates the client exceeded an enforced request limit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeMethodNotAllowed indicates the HTTP method is not allowed for the resource.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeUnavailable indicates a service or resource is temporarily unavailable.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal when err
// is not a StructuredError.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsSourceError reports whether the code belongs to the source-resolution
// error class.
func IsSourceError(code ErrorCode) bool {
	switch code {
	case ErrCodeSourceAuth, ErrCodeSourceUnreachable,
		ErrCodeSourceDigestMismatch, ErrCodeSourceMissingPath:
		return true
	default:
		return false
	}
}

// IsRenderError reports whether the code belongs to the render error class.
func IsRenderError(code ErrorCode) bool {
	return code == ErrCodeRenderMissingInput || code == ErrCodeRenderTemplate
}

// IsStateError reports whether the code belongs to the state-integrity
// error class. State errors abort a run regardless of sync policy.
func IsStateError(code ErrorCode) bool {
	return code == ErrCodeStateCorrupt || code == ErrCodeStateConflict
}

// IsTransient reports whether an error of this code may succeed on retry.
// Only network-class source failures qualify; digest mismatches and missing
// paths never do.
func IsTransient(code ErrorCode) bool {
	return code == ErrCodeSourceUnreachable || code == ErrCodeTimeout
}
