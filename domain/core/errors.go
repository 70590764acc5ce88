package core

import (
	"errors"
	"fmt"
)

// Kind is the stable machine-readable error code carried across the RPC
// boundary. Codes are append-only; renaming one is a breaking change for
// every stored audit diagnostic that references it.
type Kind string

const (
	KindInputInvalid           Kind = "InputInvalid"
	KindPropertyMissing        Kind = "PropertyMissing"
	KindOutOfMaterialRange     Kind = "OutOfMaterialRange"
	KindThickWallOutOfScope    Kind = "ThickWallOutOfScope"
	KindDualPathDivergence     Kind = "DualPathDivergence"
	KindPrecisionLoss          Kind = "PrecisionLoss"
	KindArithmeticFailure      Kind = "ArithmeticFailure"
	KindBudgetExceeded         Kind = "BudgetExceeded"
	KindAuditImmutableViolation Kind = "AuditImmutableViolation"
	KindNotFound               Kind = "NotFound"
	KindInternal               Kind = "Internal"
)

// Error is the structured domain error. Fields carries the machine-readable
// context (both values of a diverged dual path, the offending field of a
// validation rejection) so diagnostics survive serialization.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a coded domain error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorf creates a coded domain error with a formatted message.
func NewErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithField attaches one machine-readable context field.
func (e *Error) WithField(key, value string) *Error {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Wrap wraps err under a coded domain error. A nil err returns nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the code from err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given code.
func IsKind(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// IsSafetyFailure reports whether err must never be downgraded to a warning.
func IsSafetyFailure(err error) bool {
	switch KindOf(err) {
	case KindDualPathDivergence, KindPrecisionLoss, KindArithmeticFailure, KindThickWallOutOfScope:
		return true
	}
	return false
}
