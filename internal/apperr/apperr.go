package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for API responses and logging.
type Kind int

const (
	KindValidation Kind = iota
	KindInvalidState
	KindInvalidTransition
	KindNotFound
	KindDependency
	KindInternal
)

// Code returns the stable machine-readable code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindInvalidState:
		return "INVALID_STATE"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDependency:
		return "DEPENDENCY_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a typed application error carrying a stable code and a
// human-readable message safe to return to API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation flags malformed or insufficient input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidState flags an operation not permitted in the entity's current status.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition flags a status graph violation.
func InvalidTransition(entity, current, requested string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, current, requested),
	}
}

// NotFound flags a missing referenced entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Dependency wraps a failed external service call.
func Dependency(service string, err error) *Error {
	return &Error{Kind: KindDependency, Message: service + " call failed", Err: err}
}

// Internal wraps an unexpected persistence or programming error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// HTTPStatus maps an error to its response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation, KindInvalidState, KindInvalidTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the stable code for an error, INTERNAL_ERROR when untyped.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind.Code()
	}
	return "INTERNAL_ERROR"
}

// PublicMessage returns the client-safe message for an error. Wrapped causes
// of internal and dependency errors are dropped; untyped errors collapse to a
// generic message.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	return appErr.Message
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
