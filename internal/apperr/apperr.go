// Package apperr defines the error kinds every layer reports to callers.
//
// Each failure carries a Kind that maps to exactly one HTTP status, so clients
// can branch on it without parsing messages. Sentinels compare by kind (and by
// message when the sentinel has one), which lets callers write
//
//	errors.Is(err, apperr.ErrNotFound)
//
// against any not-found error regardless of which component produced it.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidInput
	KindMisconfiguration
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindMisconfiguration:
		return "misconfiguration"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus is the response code used for errors of kind k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Msg is safe to show to clients; Err holds
// the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Msg     string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same kind. A sentinel with a message only
// matches errors carrying that same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

var (
	ErrInternal         = &Error{Kind: KindInternal}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrMisconfiguration = &Error{Kind: KindMisconfiguration}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Invalid builds an InvalidInput error with per-field details.
func Invalid(msg string, details ...string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg, Details: details}
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the text a client may see for err. Internal and
// unavailable failures never expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindInternal, KindMisconfiguration:
		return "internal server error"
	case KindUnavailable:
		return "service unavailable"
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}
