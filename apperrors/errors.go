// Package apperrors defines the error kinds shared by the guard, the catalog
// service and the login flow. Controllers map a Kind to an HTTP status.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	InvalidInput
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case InvalidInput:
		return "invalid input"
	case UpstreamFailure:
		return "upstream failure"
	default:
		return "internal"
	}
}

// UpstreamKind refines UpstreamFailure for identity provider errors.
type UpstreamKind int

const (
	UpstreamNone UpstreamKind = iota
	InvalidState
	ExchangeFailed
	TokenMismatch
)

func (u UpstreamKind) String() string {
	switch u {
	case InvalidState:
		return "invalid state"
	case ExchangeFailed:
		return "exchange failed"
	case TokenMismatch:
		return "token mismatch"
	default:
		return "none"
	}
}

type Error struct {
	Kind     Kind
	Upstream UpstreamKind
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Kind == UpstreamFailure && e.Upstream != UpstreamNone {
		msg = fmt.Sprintf("%s (%s)", msg, e.Upstream)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Upstream(kind UpstreamKind, msg string, err error) *Error {
	return &Error{Kind: UpstreamFailure, Upstream: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// UpstreamKindOf returns the UpstreamKind of the first *Error in err's chain.
func UpstreamKindOf(err error) UpstreamKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Upstream
	}
	return UpstreamNone
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err, falling back to fallback
// for errors that carry no kind.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
