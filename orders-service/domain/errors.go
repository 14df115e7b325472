package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failure so the saga can route it to a terminal status
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not-found"
	KindRejected          ErrorKind = "rejected"
	KindStockInsufficient ErrorKind = "stock-insufficient"
	KindInsufficientFunds ErrorKind = "insufficient-funds"
	KindPayment           ErrorKind = "payment"
	KindEnrichment        ErrorKind = "enrichment"
	KindStatusConflict    ErrorKind = "status-conflict"
	KindVersionConflict   ErrorKind = "version-conflict"
	KindDuplicate         ErrorKind = "duplicate"
	KindUnexpected        ErrorKind = "unexpected"
)

// Error is the tagged error carried through the order saga
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tagged error without a cause
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError tags err with kind, keeping it as the cause
func WrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidationError(message string) *Error {
	return NewError(KindValidation, message)
}

func NewNotFoundError(message string) *Error {
	return NewError(KindNotFound, message)
}

func NewStatusConflictError(message string) *Error {
	return NewError(KindStatusConflict, message)
}

// KindOf returns the kind of the outermost tagged error in err's chain.
// Untagged errors are unexpected.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}

	return KindUnexpected
}

// IsKind reports whether err is tagged with kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
