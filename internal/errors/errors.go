// Package errors provides a lightweight structured error type (RedirgenError)
// for category-based classification in the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a redirgen error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content and build errors
	CategoryContent    ErrorCategory = "content"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// External system errors
	CategoryHistory ErrorCategory = "history"
	CategoryNotify  ErrorCategory = "notify"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RedirgenError is a structured error with category and context
type RedirgenError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RedirgenError
type ContextFields map[string]any

// Error implements the error interface
func (e *RedirgenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RedirgenError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RedirgenError) WithContext(key string, value any) *RedirgenError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RedirgenError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RedirgenError {
	return &RedirgenError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new RedirgenError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RedirgenError {
	return &RedirgenError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := err.(*RedirgenError); ok {
		return re.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RedirgenError
func GetCategory(err error) ErrorCategory {
	if re, ok := err.(*RedirgenError); ok {
		return re.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *RedirgenError {
	return &RedirgenError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// ConfigError wraps a configuration loading failure
func ConfigError(err error, message string) *RedirgenError {
	return &RedirgenError{
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// BuildError wraps a build failure
func BuildError(err error, message string) *RedirgenError {
	return &RedirgenError{
		Category: CategoryBuild,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
