// Package apperr defines the error taxonomy services return to handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an error for the transport layer.
type Code string

const (
	CodePermissionDenied Code = "permission_denied"
	CodeValidation       Code = "validation"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeUpstream         Code = "upstream"
)

// Error is a classified, user-presentable error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Denied builds the permission error for a missing capability on a module.
func Denied(permission, module string) *Error {
	return New(CodePermissionDenied, fmt.Sprintf("missing %s permission on %s", permission, module))
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// Upstream wraps an unexpected data-access failure.
func Upstream(err error, message string) *Error {
	return Wrap(err, CodeUpstream, message)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUpstream.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUpstream
}

func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
