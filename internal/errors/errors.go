// Package errors provides the structured error types used across genie.
//
// Every failure that can reach a user is a *GenieError carrying a category,
// a stable code, and an optional cause chain. The cause chain is load-bearing:
// cascade diagnosis inspects the original error (the origin) separately from
// the target that surfaced it, so wrapping must never discard the underlying
// error.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeLoad       ErrorType = "load"
	ErrorTypeGenerate   ErrorType = "generate"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
)

// GenieError is a structured error with category, code, and cause chain.
type GenieError struct {
	Type    ErrorType
	Code    string
	Message string
	// Cause is the underlying error. For load and generation failures this
	// is the origin used by cascade attribution and must be preserved
	// through any further wrapping.
	Cause error
	// TargetPath is the generated file the error concerns, when known.
	TargetPath string
	// TemplatePath is the source template the error concerns, when known.
	TemplatePath string
}

// Error implements the error interface.
func (e *GenieError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.TemplatePath != "" {
		parts = append(parts, e.TemplatePath)
	} else if e.TargetPath != "" {
		parts = append(parts, e.TargetPath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *GenieError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *GenieError) Is(target error) bool {
	var t *GenieError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// Origin returns the innermost non-GenieError in the cause chain, or the
// deepest GenieError when the chain ends in one. This is the error whose
// text is searched during cascade attribution.
func (e *GenieError) Origin() error {
	var cur error = e
	for {
		unwrapped := errors.Unwrap(cur)
		if unwrapped == nil {
			return cur
		}
		cur = unwrapped
	}
}

// WithTarget records the target file the error concerns.
func (e *GenieError) WithTarget(path string) *GenieError {
	e.TargetPath = path

	return e
}

// WithTemplate records the template file the error concerns.
func (e *GenieError) WithTemplate(path string) *GenieError {
	e.TemplatePath = path

	return e
}

// Error creation functions

// NewLoadError creates a template load error. cause carries the original
// load failure for downstream cascade diagnosis.
func NewLoadError(code, message string, cause error) *GenieError {
	return &GenieError{
		Type:    ErrorTypeLoad,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewGenerateError creates a generation error for a single target.
func NewGenerateError(code, message string, cause error) *GenieError {
	return &GenieError{
		Type:    ErrorTypeGenerate,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *GenieError {
	return &GenieError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a catalog/overrides composition conflict.
func NewConflictError(code, message string) *GenieError {
	return &GenieError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *GenieError {
	return &GenieError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *GenieError {
	return &GenieError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *GenieError {
	return &GenieError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsLoadError checks if an error is a template load error.
func IsLoadError(err error) bool {
	var ge *GenieError
	if errors.As(err, &ge) {
		return ge.Type == ErrorTypeLoad
	}

	return false
}

// IsConflictError checks if an error is a composition conflict.
func IsConflictError(err error) bool {
	var ge *GenieError
	if errors.As(err, &ge) {
		return ge.Type == ErrorTypeConflict
	}

	return false
}

// OriginOf returns the innermost error in err's cause chain. For plain
// errors this is err itself.
func OriginOf(err error) error {
	var ge *GenieError
	if errors.As(err, &ge) {
		return ge.Origin()
	}

	cur := err
	for {
		unwrapped := errors.Unwrap(cur)
		if unwrapped == nil {
			return cur
		}
		cur = unwrapped
	}
}

// Common error codes.
const (
	ErrCodeTemplateLoad     = "ERR_TEMPLATE_LOAD"
	ErrCodeTemplateShape    = "ERR_TEMPLATE_SHAPE"
	ErrCodeTemplateExec     = "ERR_TEMPLATE_EXEC"
	ErrCodeGenerateFailed   = "ERR_GENERATE_FAILED"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeRootUnreadable   = "ERR_ROOT_UNREADABLE"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeCatalogConflict  = "ERR_CATALOG_CONFLICT"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)
