package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies engine failures. Every kind is locally recoverable: the
// caller gets a structured error and no ledger mutation has happened.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindInvalidQuantity      Kind = "invalid_quantity"
	KindInvalidIdentifierSet Kind = "invalid_identifier_set"
	KindPreconditionFailed   Kind = "precondition_failed"
	KindDuplicateIdentifier  Kind = "duplicate_identifier"
	KindInternal             Kind = "internal"
)

// Error is the structured error returned by every engine operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message, preserving the cause chain.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the response status used by the HTTP layer.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidQuantity, KindInvalidIdentifierSet:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindPreconditionFailed, KindDuplicateIdentifier:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
