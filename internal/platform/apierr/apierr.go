package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, "not_found", wrapMsg(msg, ErrNotFound))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, "forbidden", wrapMsg(msg, ErrForbidden))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", wrapMsg(msg, ErrUnauthorized))
}

func Invalid(msg string) *Error {
	return New(http.StatusBadRequest, "invalid_request", wrapMsg(msg, ErrInvalidArgument))
}

func Conflict(msg string) *Error {
	return New(http.StatusBadRequest, "conflict", wrapMsg(msg, ErrConflict))
}

// Coded builds an error with a specific machine code whose message is msg and
// which still matches sentinel under errors.Is.
func Coded(status int, code, msg string, sentinel error) *Error {
	return New(status, code, wrapMsg(msg, sentinel))
}

// Message returns the user-facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}

// StatusOf maps err to an HTTP status, defaulting to 500 for unknown errors.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrConflict):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// wrapMsg keeps msg as the user-facing text while still matching the sentinel.
type msgError struct {
	msg      string
	sentinel error
}

func (m *msgError) Error() string { return m.msg }
func (m *msgError) Unwrap() error { return m.sentinel }

func wrapMsg(msg string, sentinel error) error {
	if msg == "" {
		return sentinel
	}
	return &msgError{msg: msg, sentinel: sentinel}
}
