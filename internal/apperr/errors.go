// Package apperr defines the error taxonomy shared by the service layer and
// the HTTP boundary. Services return kinds; the boundary maps kind to status.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindRateLimited
)

// Error codes rendered in the client envelope.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"

	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

// CodeForStatus maps an HTTP status produced outside the service layer,
// such as the router's 404/405, to an envelope code.
func CodeForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return CodeNotFound
	case status == fiber.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case status >= 400 && status < 500:
		return CodeInvalidRequest
	default:
		return CodeInternalError
	}
}

// Error is a typed application error. Message is safe to show to clients;
// Cause carries the internal detail and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is comparisons on kind sentinels built by the constructors.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Cause: cause}
}

// HTTPStatus maps the error kind to its response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the client envelope.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return CodeValidationError
	case KindConflict:
		return CodeConflict
	case KindAuth:
		return CodeUnauthorized
	case KindRateLimited:
		return CodeRateLimited
	default:
		return CodeInternalError
	}
}

// From coerces any error into an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
