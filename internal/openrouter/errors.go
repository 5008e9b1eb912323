package openrouter

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags an Error with its failure category.
type Kind string

// Failure categories surfaced by the transport.
const (
	KindConfiguration      Kind = "configuration"
	KindValidation         Kind = "validation"
	KindNetwork            Kind = "network"
	KindAuth               Kind = "auth"
	KindRateLimit          Kind = "rate_limit"
	KindServer             Kind = "server"
	KindSafety             Kind = "safety"
	KindSchema             Kind = "schema"
	KindUnexpectedResponse Kind = "unexpected_response"
)

// Error is the typed error returned by the transport.
type Error struct {
	Kind       Kind
	Message    string
	Status     int           // HTTP status when the upstream answered, 0 otherwise
	RetryAfter time.Duration // from the Retry-After header, 0 when absent
	Retryable  bool
	cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.cause != nil:
		return fmt.Sprintf("openrouter: %s (status %d): %s: %v", e.Kind, e.Status, e.Message, e.cause)
	case e.Status > 0:
		return fmt.Sprintf("openrouter: %s (status %d): %s", e.Kind, e.Status, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("openrouter: %s: %s: %v", e.Kind, e.Message, e.cause)
	default:
		return fmt.Sprintf("openrouter: %s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is a transport error of the given kind.
func IsKind(err error, kind Kind) bool {
	var trErr *Error
	return errors.As(err, &trErr) && trErr.Kind == kind
}

// AsError extracts the typed transport error from an error chain.
func AsError(err error) (*Error, bool) {
	var trErr *Error
	ok := errors.As(err, &trErr)
	return trErr, ok
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func validationError(message string, cause error) *Error {
	return newError(KindValidation, message, cause)
}

func networkError(message string, cause error) *Error {
	err := newError(KindNetwork, message, cause)
	err.Retryable = true
	return err
}
