// Package errors defines the coded errors the library returns to its callers.
//
// Services return one of the constructors below; the outermost boundary
// turns any error into display text with UserMessage:
//
//	if strings.TrimSpace(req.Name) == "" {
//	    return errors.Validation("Name is required")
//	}
//	...
//	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
package errors

import (
	"errors"
	"fmt"
)

// Is and As are re-exported so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code classifies an Error.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeBusy          Code = "BUSY"
	CodeStorage       Code = "STORAGE"
	CodeInternal      Code = "INTERNAL"
)

// GenericFailureMessage is what users see for storage and unexpected failures.
const GenericFailureMessage = "Something went wrong. Please try again."

// visible lists the codes whose message is written for the user.
var visible = map[Code]bool{
	CodeValidation:    true,
	CodeNotFound:      true,
	CodeAlreadyExists: true,
	CodeConflict:      true,
	CodeBusy:          true,
}

// Error carries a Code, a message and optionally structured details such as
// per-field validation failures.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Code, so errors.Is(err, ErrNotFound)
// holds whatever the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrBusy          = &Error{Code: CodeBusy, Message: "a search is already running"}
	ErrStorage       = &Error{Code: CodeStorage, Message: "storage error"}
)

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// ValidationWithDetails attaches per-field messages to a validation error.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Storage wraps a persistence failure. Its message is never shown to users.
func Storage(err error, msg string) *Error {
	return Wrap(err, CodeStorage, msg)
}

// Wrap wraps err under code with msg.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return CodeInternal
}

// UserMessage returns the text to show a user for err: the error's own
// message for validation, not-found, duplicate, conflict and busy errors, and
// GenericFailureMessage for anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := find(err); ok && visible[e.Code] {
		return e.Message
	}
	return GenericFailureMessage
}

func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
