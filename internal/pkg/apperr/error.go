package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForeignKey   Kind = "foreign_key"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal"
)

type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []Detail
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

type Option func(*Error)

func WithDetails(details ...Detail) Option {
	return func(e *Error) { e.Details = append(e.Details, details...) }
}

func WithErr(err error) Option {
	return func(e *Error) { e.Err = err }
}

func New(kind Kind, code, message string, opts ...Option) *Error {
	e := &Error{Kind: kind, Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func Validation(message string, opts ...Option) *Error {
	return New(KindValidation, "VALIDATION_ERROR", message, opts...)
}

func NotFound(message string, opts ...Option) *Error {
	return New(KindNotFound, "NOT_FOUND", message, opts...)
}

func Conflict(code, message string, opts ...Option) *Error {
	return New(KindConflict, code, message, opts...)
}

func ForeignKey(message string, opts ...Option) *Error {
	return New(KindForeignKey, "FOREIGN_KEY_VIOLATION", message, opts...)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
