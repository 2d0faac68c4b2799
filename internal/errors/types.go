// Package errors provides structured error types for viewfinder.
//
// Resolution problems are split into recoverable diagnostics (an unresolved
// partial, an unreadable file) that degrade output gracefully, and fatal
// errors (invalid configuration, runaway recursion) that abort a call.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeResolve  ErrorType = "resolve"
	ErrorTypeRoute    ErrorType = "route"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeUnresolvedReference = "ERR_UNRESOLVED_REFERENCE"
	ErrCodeUnresolvedRoute     = "ERR_UNRESOLVED_ROUTE"
	ErrCodeTemplateNotFound    = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeReadFailure         = "ERR_READ_FAILURE"
	ErrCodeMaxDepth            = "ERR_MAX_DEPTH"
	ErrCodeConfigInvalid       = "ERR_CONFIG_INVALID"
	ErrCodeRoutesInvalid       = "ERR_ROUTES_INVALID"
)

// ViewError is a structured error type with resolution context.
type ViewError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	// Template is the template being processed when the error occurred
	Template string
	// Target is the partial, template or route that failed
	Target      string
	Recoverable bool
}

// Error implements the error interface.
func (e *ViewError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ViewError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ViewError) Is(target error) bool {
	var t *ViewError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithTemplate adds the referencing template.
func (e *ViewError) WithTemplate(template string) *ViewError {
	e.Template = template

	return e
}

// Error creation functions

// NewResolveError creates a recoverable resolution error.
func NewResolveError(code, message string) *ViewError {
	return &ViewError{
		Type:        ErrorTypeResolve,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error. Read failures only drop the branch being
// read, so they are recoverable.
func NewIOError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ViewError {
	return &ViewError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ve *ViewError
	if errors.As(err, &ve) {
		return ve.Recoverable
	}

	return false
}

// IsUnresolved reports whether err is an unresolved partial, template or route.
func IsUnresolved(err error) bool {
	var ve *ViewError
	if !errors.As(err, &ve) {
		return false
	}

	switch ve.Code {
	case ErrCodeUnresolvedReference, ErrCodeUnresolvedRoute, ErrCodeTemplateNotFound:
		return true
	}

	return false
}

// Helper functions for common errors

// ErrUnresolvedReference creates an error for a partial that matched no file.
func ErrUnresolvedReference(partial string) *ViewError {
	e := NewResolveError(ErrCodeUnresolvedReference, "Could not find partial: "+partial)
	e.Target = partial

	return e
}

// ErrTemplateNotFound creates an error for a top-level template that matched no file.
func ErrTemplateNotFound(identifier string) *ViewError {
	e := NewResolveError(ErrCodeTemplateNotFound, "Could not find template: "+identifier)
	e.Target = identifier

	return e
}

// ErrUnresolvedRoute creates an error for a route name missing from the route table.
func ErrUnresolvedRoute(route string) *ViewError {
	return &ViewError{
		Type:    ErrorTypeRoute,
		Code:    ErrCodeUnresolvedRoute,
		Message: "No route matches: " + route,
		Target:  route,
	}
}

// ErrReadFailure creates an error for a file that resolved but could not be read.
func ErrReadFailure(path string, cause error) *ViewError {
	e := NewIOError(ErrCodeReadFailure, "Error processing "+path, cause)
	e.Target = path

	return e
}

// ErrMaxDepth creates the error returned when render nesting exceeds the configured bound.
func ErrMaxDepth(path string, depth int) *ViewError {
	e := NewInternalError(ErrCodeMaxDepth,
		fmt.Sprintf("maximum render depth %d exceeded at %s", depth, path), nil)
	e.Target = path

	return e
}

// ErrMaxDepthExceeded is a sentinel usable with errors.Is.
var ErrMaxDepthExceeded = &ViewError{Type: ErrorTypeInternal, Code: ErrCodeMaxDepth}
