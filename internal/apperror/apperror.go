// Package apperror defines the error taxonomy shared by all services.
// Services return these structured errors; HTTP handlers translate them to
// status codes and user-safe messages at the boundary.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota

	// Auth
	KindInvalidCredentials
	KindExpiredSession
	KindUnauthorized

	// Storage
	KindStorageUnavailable
	KindStorageConflict

	// Provider
	KindProviderRateLimited
	KindProviderInvalidResponse
	KindProviderUnavailable

	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindExpiredSession:
		return "expired_session"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindStorageConflict:
		return "storage_conflict"
	case KindProviderRateLimited:
		return "provider_rate_limited"
	case KindProviderInvalidResponse:
		return "provider_invalid_response"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

type AppError struct {
	Kind    Kind
	Message string // user-safe
	Err     error  // underlying cause, never shown to callers over HTTP
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err is not an
// AppError anywhere in its chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns err's user-safe message, or a generic one when err is
// not an AppError.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal server error"
}

func InvalidCredentials() *AppError {
	return New(KindInvalidCredentials, "invalid username or password")
}

func ExpiredSession() *AppError {
	return New(KindExpiredSession, "session has expired")
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message)
}

func StorageUnavailable(err error) *AppError {
	return Wrap(KindStorageUnavailable, "storage is unavailable", err)
}

func NotFound(resource string) *AppError {
	return New(KindNotFound, resource+" not found")
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}
