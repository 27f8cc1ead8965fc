// Package errors defines the coded errors returned by every editor
// operation.
//
// An [Error] carries a [Code] for callers that branch on the kind of
// failure (the HTTP API maps codes to status codes) and a message that is
// shown to the user as-is in notifications. Causes are kept for
// errors.Is and errors.As from the standard library.
//
// Codes group into bad input (INVALID_*, DUPLICATE_NAME, MALFORMED_DOCUMENT),
// missing references (UNKNOWN_*, NOT_FOUND, FILE_NOT_FOUND) and internal
// failures. No code is fatal to a session: the editor reports the failure
// and leaves its state unchanged.
//
//	err := errors.New(errors.ErrCodeDuplicateName, "node type %q already registered", name)
//	if errors.Is(err, errors.ErrCodeDuplicateName) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeDuplicateName      Code = "DUPLICATE_NAME"
	ErrCodeInvalidName        Code = "INVALID_NAME"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidConnection  Code = "INVALID_CONNECTION"
	ErrCodeMalformedDocument  Code = "MALFORMED_DOCUMENT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidSettings    Code = "INVALID_SETTINGS"
	ErrCodeInvalidNodeCatalog Code = "INVALID_NODE_CATALOG"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeUnknownTree     Code = "UNKNOWN_TREE"
	ErrCodeUnknownNodeType Code = "UNKNOWN_NODE_TYPE"
	ErrCodeUnknownBlock    Code = "UNKNOWN_BLOCK"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Message is meant for users; Cause is optional.
type Error struct {
	Code    Code
	Message string
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

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the first *Error in err's chain
// without its code and cause, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
