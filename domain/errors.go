package domain

import "fmt"

// Error codes for domain errors
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodePatchError        = "PATCH_ERROR"
	ErrCodeStreamError       = "STREAM_ERROR"
)

// DomainError represents a categorized error with a stable code
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates an error for invalid user input
func NewInvalidInputError(message string, cause error) error {
	return DomainError{Code: ErrCodeInvalidInput, Message: message, Cause: cause}
}

// NewValidationError creates an error for failed validation
func NewValidationError(message string) error {
	return DomainError{Code: ErrCodeInvalidInput, Message: message}
}

// NewFileNotFoundError creates an error for a missing file
func NewFileNotFoundError(path string, cause error) error {
	return DomainError{Code: ErrCodeFileNotFound, Message: fmt.Sprintf("file not found: %s", path), Cause: cause}
}

// NewParseError creates an error for an unparseable source file
func NewParseError(path string, cause error) error {
	return DomainError{Code: ErrCodeParseError, Message: fmt.Sprintf("failed to parse: %s", path), Cause: cause}
}

// NewAnalysisError creates an error for a failed analysis run
func NewAnalysisError(message string, cause error) error {
	return DomainError{Code: ErrCodeAnalysisError, Message: message, Cause: cause}
}

// NewConfigError creates an error for invalid configuration
func NewConfigError(message string, cause error) error {
	return DomainError{Code: ErrCodeConfigError, Message: message, Cause: cause}
}

// NewOutputError creates an error for output failures
func NewOutputError(message string, cause error) error {
	return DomainError{Code: ErrCodeOutputError, Message: message, Cause: cause}
}

// NewUnsupportedFormatError creates an error for an unknown output format
func NewUnsupportedFormatError(format string) error {
	return DomainError{Code: ErrCodeUnsupportedFormat, Message: fmt.Sprintf("unsupported format: %s", format)}
}

// NewPatchError creates an error for a failed patch operation
func NewPatchError(message string, cause error) error {
	return DomainError{Code: ErrCodePatchError, Message: message, Cause: cause}
}

// NewStreamError creates an error for stream coordinator failures
func NewStreamError(message string, cause error) error {
	return DomainError{Code: ErrCodeStreamError, Message: message, Cause: cause}
}
