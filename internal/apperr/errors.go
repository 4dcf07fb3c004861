// Package apperr defines the structured error values that cross the tool
// boundary. Every failure is a kind plus a message so orchestration code can
// inspect outcomes uniformly instead of matching on error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation covers malformed ids, missing required arguments, and
	// unsupported languages or kinds. The operation aborts before any mutation.
	KindValidation Kind = "validation"
	// KindNotFound covers references to ids absent from the live canvas.
	KindNotFound Kind = "not_found"
	// KindProvider covers transient failures from the AI backend collaborator.
	KindProvider Kind = "provider"
	// KindSerialization covers schema violations on document read or write.
	KindSerialization Kind = "serialization"
)

// Sentinels for errors.Is checks per kind.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrProvider      = errors.New("provider error")
	ErrSerialization = errors.New("serialization error")
)

// Error is the structured error value used throughout Skein.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the kind sentinel (and the cause, if any) to errors.Is.
func (e *Error) Unwrap() []error {
	sentinel := sentinelFor(e.Kind)
	if e.Err != nil {
		return []error{sentinel, e.Err}
	}
	return []error{sentinel}
}

func sentinelFor(k Kind) error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindProvider:
		return ErrProvider
	case KindSerialization:
		return ErrSerialization
	}
	return errors.New(string(k))
}

// Validation builds a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Provider wraps a transient backend failure, preserving the provider's message.
func Provider(err error, format string, args ...any) *Error {
	return &Error{Kind: KindProvider, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Serialization builds a serialization error naming the offending field.
func Serialization(field, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if field != "" {
		msg = fmt.Sprintf("field %q: %s", field, msg)
	}
	return &Error{Kind: KindSerialization, Msg: msg}
}

// KindOf returns the kind of err, or "" when err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrProvider):
		return KindProvider
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	}
	return ""
}
