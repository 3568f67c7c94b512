package aggregates

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure seen while maintaining a rollup or writing a child row.
type ErrorCode string

const (
	CodeNotFound  ErrorCode = "not_found"
	CodeConflict  ErrorCode = "conflict"
	CodeRetryable ErrorCode = "retryable"
	CodeInternal  ErrorCode = "internal"

	// A recomputation that fails with either code leaves the triggering child write
	// committed; the parent keeps its previous rollup until the next trigger.
	CodeReadFailure  ErrorCode = "read_failure"
	CodeWriteFailure ErrorCode = "write_failure"
)

type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return fmt.Sprintf("%s (%s)", e.Op, e.Code)
	case e.Op == "":
		return fmt.Sprintf("%v (%s)", e.Err, e.Code)
	default:
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with code under op. A nil err stays nil.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}
