package graphql

import (
	"errors"

	"eventhub/internal/services/auth"
)

const (
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
	CodeEmailInUse       = "EMAIL_IN_USE"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeTooManyAttempts  = "TOO_MANY_ATTEMPTS"
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// Error is a resolver error whose code is exposed under "extensions".
type Error struct {
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": e.Code,
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}

func mapError(err error) *Error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return newError(CodeUserNotFound, "User doesn't exist", err)
	case errors.Is(err, auth.ErrPasswordMismatch):
		return newError(CodePasswordMismatch, "Invalid password", err)
	case errors.Is(err, auth.ErrEmailInUse):
		return newError(CodeEmailInUse, "Email already in use", err)
	case errors.Is(err, auth.ErrPasswordConfirmation):
		return newError(CodeBadUserInput, "Password and password confirmation must match", err)
	case errors.Is(err, auth.ErrTooManyAttempts):
		return newError(CodeTooManyAttempts, "Too many failed login attempts", err)
	case errors.Is(err, auth.ErrUnauthorized):
		return newError(CodeUnauthenticated, "Not authenticated", err)
	}

	return newError(CodeInternal, "Internal server error", err)
}
