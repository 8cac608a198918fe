// Package clierr defines structured errors with machine-readable codes.
package clierr

import (
	"errors"
	"fmt"
)

// Error codes. User-facing failures exit with 1, internal ones with 2.
const (
	TaskNotFound       = "TASK_NOT_FOUND"
	TaskBusy           = "TASK_BUSY"
	WIPLimitExceeded   = "WIP_LIMIT_EXCEEDED"
	StoreFailure       = "STORE_FAILURE"
	InvalidStatus      = "INVALID_STATUS"
	InvalidPriority    = "INVALID_PRIORITY"
	InvalidInput       = "INVALID_INPUT"
	InvalidTaskID      = "INVALID_TASK_ID"
	InvalidDate        = "INVALID_DATE"
	InvalidPosition    = "INVALID_POSITION"
	BoardNotFound      = "BOARD_NOT_FOUND"
	BoardAlreadyExists = "BOARD_ALREADY_EXISTS"
	ConfirmationReq    = "CONFIRMATION_REQUIRED"
	NoChanges          = "NO_CHANGES"
	InternalError      = "INTERNAL_ERROR"
)

// Error is an error carrying a stable code and optional structured details.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// New creates an Error with the given code and message.
func New(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode maps the error code to a process exit code.
func (e *Error) ExitCode() int {
	switch e.Code {
	case InternalError, StoreFailure:
		return 2 //nolint:mnd // internal failure
	default:
		return 1
	}
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// SilentError signals a non-zero exit after output has already been written.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
