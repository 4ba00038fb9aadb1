package shared

import "errors"

// DomainError represents a domain-level error. It carries a stable code for
// programmatic handling plus the operator-facing contract interactive callers
// rely on: a retryable flag and a short list of suggestions.
type DomainError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new non-retryable domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a domain error the caller may safely re-attempt
func NewRetryableError(code, message string, suggestions ...string) *DomainError {
	return &DomainError{
		Code:        code,
		Message:     message,
		Retryable:   true,
		Suggestions: suggestions,
	}
}

// WithSuggestions returns a copy of the error carrying operator suggestions
func (e *DomainError) WithSuggestions(suggestions ...string) *DomainError {
	clone := *e
	clone.Suggestions = suggestions
	return &clone
}

// IsRetryable reports whether err (or any error it wraps) is a retryable
// domain error
func IsRetryable(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Retryable
	}
	return false
}

// ErrorCode extracts the domain error code, or empty string for non-domain errors
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConflict            = NewDomainError("CONFLICT", "Operation conflicts with existing data")
	ErrTransient           = NewRetryableError("TRANSIENT", "Temporary failure, please try again",
		"Refresh and try again", "If the problem persists, contact an administrator")
)
