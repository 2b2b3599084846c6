package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP boundary can map it to a status code
// without inspecting message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindCapacityExceeded
	KindConflict
	KindGeneration
	KindRepositoryTimeout
)

// Error carries a kind, a stable machine-readable code and a human message.
// The wrapped cause (if any) never leaks to API clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error  { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error    { return New(KindNotFound, code, message) }
func Forbidden(code, message string) *Error   { return New(KindForbidden, code, message) }
func Unauthorized(message string) *Error      { return New(KindUnauthorized, "unauthorized", message) }
func InvalidTransition(message string) *Error { return New(KindInvalidTransition, "invalid_transition", message) }
func CapacityExceeded(message string) *Error  { return New(KindCapacityExceeded, "capacity_exceeded", message) }
func Conflict(code, message string) *Error    { return New(KindConflict, code, message) }
func Generation(message string) *Error        { return New(KindGeneration, "generation_failed", message) }

// FromRepository normalizes low-level storage failures. Context deadline and
// cancellation become the retriable timeout kind; everything else stays internal.
func FromRepository(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindRepositoryTimeout, "repository_timeout", "storage did not respond in time", err)
	}
	return Wrap(KindInternal, "internal_error", "internal server error", err)
}

// KindOf unwraps err to its Kind, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the boundary status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindCapacityExceeded, KindConflict:
		return http.StatusConflict
	case KindRepositoryTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
