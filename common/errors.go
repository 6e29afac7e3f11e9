package common

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation         Code = "validation"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeSignature          Code = "signature"
	CodeGatewayUnavailable Code = "gateway_unavailable"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal"
)

// Error carries a machine-readable code so callers can branch on the
// failure class without string matching.
type Error struct {
	Code    Code
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

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
