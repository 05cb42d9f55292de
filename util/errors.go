package util

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError so the HTTP layer can pick a status code.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Sentinel errors returned by the persistence helpers.
var (
	ErrNoDocument   = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// AppError is the error type returned by the service layer.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

func Validation(msg string) *AppError   { return newError(KindValidation, msg) }
func Unauthorized(msg string) *AppError { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *AppError    { return newError(KindForbidden, msg) }
func NotFound(msg string) *AppError     { return newError(KindNotFound, msg) }
func Conflict(msg string) *AppError     { return newError(KindConflict, msg) }
func InvalidState(msg string) *AppError { return newError(KindInvalidState, msg) }
func Unavailable(msg string) *AppError  { return newError(KindUnavailable, msg) }

// Internal wraps an unexpected failure. Its cause is logged but never rendered.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: INTERNAL_SERVER_ERROR, Err: err}
}

// KindOf reports the kind of err, treating anything that is not an AppError as internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps err to the HTTP status the controllers respond with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API clients.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return INTERNAL_SERVER_ERROR
}
