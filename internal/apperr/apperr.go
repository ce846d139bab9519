// Package apperr defines the error taxonomy shared by the upload and
// transcription pipelines. Every error that reaches an HTTP handler is an
// *Error carrying a stable code, a user-facing message and the status it maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeConfiguration  Code = "CONFIGURATION_ERROR"
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeAuthorization  Code = "AUTHORIZATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeQuota          Code = "QUOTA_EXCEEDED"
	CodeTransientIO    Code = "TRANSIENT_IO"
	CodeProvider       Code = "PROVIDER_ERROR"
)

// Error is the unified application error type.
type Error struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Message is safe to show to the end user.
	Message string `json:"message"`
	// Retryable reports whether repeating the same call may succeed.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the error maps to.
	HTTPStatus int `json:"-"`
	// Details holds extra context for logs.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. It is logged, never sent to clients.
	Cause error `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the status and retryability implied by code.
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusFor(code),
		Retryable:  code == CodeTransientIO || code == CodeQuota,
	}
}

// StatusFor maps a code to its HTTP status.
func StatusFor(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeQuota:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports bad input shape, size or type.
func Validation(message string) *Error { return New(CodeValidation, message) }

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// MissingField reports a required field that was not supplied.
func MissingField(field string) *Error {
	return New(CodeValidation, fmt.Sprintf("Missing required field: %s", field)).WithDetail("field", field)
}

// Configuration reports missing or unusable operator configuration.
func Configuration(message string) *Error { return New(CodeConfiguration, message) }

// MissingConfig reports unset configuration keys.
func MissingConfig(keys ...string) *Error {
	return New(CodeConfiguration, "Server configuration error: required settings are missing.").
		WithDetail("missing", keys)
}

// Authentication reports bad or expired provider credentials.
func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication with the speech provider failed. Check the service credentials."
	}
	return New(CodeAuthentication, message)
}

// Authorization reports insufficient provider permissions.
func Authorization(message string) *Error {
	if message == "" {
		message = "Permission denied by the speech provider. Check the service account roles."
	}
	return New(CodeAuthorization, message)
}

// NotFound reports a referenced storage object that does not exist.
func NotFound(resource string) *Error {
	return New(CodeNotFound, fmt.Sprintf("The requested %s was not found.", resource)).
		WithDetail("resource", resource)
}

// Quota reports provider rate limiting or quota exhaustion.
func Quota() *Error {
	return New(CodeQuota, "Rate limit or quota exceeded. Please wait a moment and try again.")
}

// TransientIO reports a storage or network failure that outlived the retry budget.
func TransientIO(message string) *Error { return New(CodeTransientIO, message) }

// Provider is the catch-all for unmapped provider failures.
func Provider(message string) *Error {
	if message == "" {
		message = "Transcription failed. Please try again later."
	}
	return New(CodeProvider, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err's chain holds an *Error with the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// From converts any error into an *Error. Unknown errors become ProviderError
// with a generic message so raw provider text is never shown to clients.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Provider("").WithCause(err)
}
