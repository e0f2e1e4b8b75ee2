// Package errors provides the coded errors shared by the costgraph CLI, the
// watch view and the HTTP server.
//
// An [Error] carries a [Code] for callers, a message for users and an
// optional cause for logs. The server maps codes to status codes with
// [HTTPStatus]; the CLI and watch view show [UserMessage].
//
//	err := errors.Wrap(errors.ErrCodeFetchFailed, cause, "Failed to fetch data")
//	errors.Is(err, errors.ErrCodeFetchFailed) // true
//	errors.UserMessage(err)                   // "Failed to fetch data"
//
// Codes are grouped by prefix: INVALID_* for rejected input, MALFORMED_*
// for upstream records that break their contract, FETCH_FAILED and
// NETWORK_ERROR for the pipeline API.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPipeline Code = "INVALID_PIPELINE"
	ErrCodeInvalidProvider Code = "INVALID_PROVIDER"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// A cost record without region or totalCost.
	ErrCodeMalformedRecord Code = "MALFORMED_RECORD"

	ErrCodeNotFound Code = "NOT_FOUND"

	// A load failed as a whole; no partial data is returned.
	ErrCodeFetchFailed Code = "FETCH_FAILED"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string // shown to users as is
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any [Error] in err's chain has code. A FETCH_FAILED
// wrapping a NETWORK_ERROR matches both.
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

// GetCode returns the code of the outermost [Error] in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the server responds with.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidPipeline, ErrCodeInvalidProvider, ErrCodeInvalidFormat:
		return 400
	case ErrCodeNotFound:
		return 404
	case ErrCodeFetchFailed, ErrCodeNetwork, ErrCodeMalformedRecord:
		return 502
	case ErrCodeTimeout:
		return 504
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
