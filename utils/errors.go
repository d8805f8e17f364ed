package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a failure for HTTP translation.
type Kind int

const (
	KindInternal Kind = iota
	KindBadInput
	KindNotFound
	KindConflict
	KindUpstreamTimeout
	KindUpstream
	KindGeneration
)

// Error is the single error type crossing service boundaries. Services
// return it (or wrap causes into it); only the HTTP layer converts it
// to a status code.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new domain error.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a domain error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// BadInput reports malformed or out-of-range client data.
func BadInput(format string, args ...any) *Error { return E(KindBadInput, format, args...) }

// NotFound reports an unknown document, quiz, or session identifier.
func NotFound(format string, args ...any) *Error { return E(KindNotFound, format, args...) }

// Conflict reports concurrent modification of the same session.
func Conflict(format string, args ...any) *Error { return E(KindConflict, format, args...) }

// KindOf extracts the error kind, defaulting to internal. Context
// cancellation and deadline errors classify as upstream timeouts.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindUpstreamTimeout
	}
	return KindInternal
}

// statusOf maps an error kind to its HTTP status code.
func statusOf(kind Kind) int {
	switch kind {
	case KindBadInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstream:
		return http.StatusBadGateway
	case KindGeneration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the standard error body. Messages never include
// provider error bodies or stack traces.
func RespondError(c *gin.Context, err error) {
	kind := KindOf(err)
	msg := "internal server error"
	var e *Error
	if errors.As(err, &e) {
		msg = e.Msg
	} else if kind == KindUpstreamTimeout {
		msg = "upstream call timed out"
	}
	c.JSON(statusOf(kind), gin.H{"detail": msg})
}
