// Package ferrors defines the stable error taxonomy shared by the store,
// the HTTP dispatcher, and the CLI's exit-code mapping.
package ferrors

import (
	"errors"
	"fmt"
)

// Kind is one of the stable, observable error categories. Callers should
// switch on Kind rather than compare error values, since the underlying
// message is free-form.
type Kind string

const (
	InvalidArgument    Kind = "InvalidArgument"
	NotEnoughArguments Kind = "NotEnoughArguments"
	InvalidCommand     Kind = "InvalidCommand"
	InvalidImgID       Kind = "InvalidImgId"
	ImageNotFound      Kind = "ImageNotFound"
	DuplicateID        Kind = "DuplicateId"
	Full               Kind = "Full"
	MaxFiles           Kind = "MaxFiles"
	Resolutions        Kind = "Resolutions"
	IO                 Kind = "IO"
	OutOfMemory        Kind = "OutOfMemory"
	CodecFailure       Kind = "CodecFailure"
	Threading          Kind = "Threading"
	Runtime            Kind = "Runtime"
)

// Error wraps a Kind with a human-readable message and, optionally, the
// underlying cause.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy kind.
func (e *Error) Kind() Kind { return e.kind }

// New builds an Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap builds an Error of the given kind, wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// KindOf extracts the Kind from err, defaulting to Runtime for errors that
// didn't originate from this package (nothing in the design should produce
// one, but dispatch and the CLI must not panic on an unexpected error).
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind()
	}
	return Runtime
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
