// Package errs provides the coded errors surfaced by the calibration and
// staircase packages. Callers branch on the code with Is, never on the
// message text.
package errs

import (
	"errors"
	"fmt"
)

var _ = fmt.Print

type Code string

const (
	CalibrationInput Code = "CALIBRATION_INPUT"
	InvalidResponse  Code = "INVALID_RESPONSE"
	ConfigInvalid    Code = "CONFIG_INVALID"
	LogSink          Code = "LOG_SINK"
	InputFormat      Code = "INPUT_FORMAT"
	Internal         Code = "INTERNAL_ERROR"
)

type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match any *Error carrying the same code, so that
// errors.Is(err, &errs.Error{Code: errs.InvalidResponse}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Message == "" && t.Cause == nil && t.Code == e.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. The code of an underlying *Error is kept, anything
// else becomes Internal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := Internal
	var e *Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return &Error{Code: code, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode re-labels err, keeping it as the cause.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: err.Error(), Cause: err}
}

// CodeOf returns the outermost code in the chain, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether any error in the chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}
