package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"restrpc/rpc/message"
)

// Kind classifies a call-level failure.
type Kind string

const (
	KindTransportFailure Kind = "TransportFailure"
	KindMalformedPayload Kind = "MalformedPayload"
	KindMethodNotFound   Kind = "MethodNotFound"
	KindInvocationFailed Kind = "InvocationFailed"
	KindTimeout          Kind = "Timeout"
	KindRateLimited      Kind = "RateLimited"
)

// Status is the HTTP status the server answers with for this kind.
func (k Kind) Status() int {
	switch k {
	case KindMalformedPayload:
		return http.StatusBadRequest
	case KindMethodNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindTransportFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrTransportFailure = &Error{Kind: KindTransportFailure}
	ErrMalformedPayload = &Error{Kind: KindMalformedPayload}
	ErrMethodNotFound   = &Error{Kind: KindMethodNotFound}
	ErrInvocationFailed = &Error{Kind: KindInvocationFailed}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrRateLimited      = &Error{Kind: KindRateLimited}
)

// Error is what a stub returns when a call fails.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: cause.Error(), cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "restrpc: " + string(e.Kind)
	}
	return "restrpc: " + string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// AsError classifies err. Errors that are not *Error are failures of the
// invoked method, except an expired deadline.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindTimeout, err)
	}
	return wrapError(KindInvocationFailed, err)
}

func (e *Error) envelope() *message.Error {
	return &message.Error{Kind: string(e.Kind), Message: e.Message}
}

func fromEnvelope(e *message.Error) *Error {
	return &Error{Kind: Kind(e.Kind), Message: e.Message}
}

func errorResponse(err error) *message.Response {
	return &message.Response{Error: AsError(err).envelope()}
}
