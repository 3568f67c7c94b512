package apierr

import (
	"errors"
	"fmt"
	"net/http"
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

func Newf(status int, code string, format string, args ...any) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func BadRequest(code string, format string, args ...any) *Error {
	return Newf(http.StatusBadRequest, code, format, args...)
}

func Unauthorized(code string, format string, args ...any) *Error {
	return Newf(http.StatusUnauthorized, code, format, args...)
}

func Forbidden(code string, format string, args ...any) *Error {
	return Newf(http.StatusForbidden, code, format, args...)
}

func NotFound(code string, format string, args ...any) *Error {
	return Newf(http.StatusNotFound, code, format, args...)
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

// StatusOf reports the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	if apiErr, ok := As(err); ok && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// CodeOf reports the machine-readable code carried by err, or "internal".
func CodeOf(err error) string {
	if apiErr, ok := As(err); ok && apiErr.Code != "" {
		return apiErr.Code
	}
	return "internal"
}

func Conflict(code string, format string, args ...any) *Error {
	return Newf(http.StatusConflict, code, format, args...)
}
