package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so callers can branch on the failure
// category without string matching.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindCurrencyMismatch      Kind = "currency_mismatch"
	KindInvalidQuantity       Kind = "invalid_quantity"
	KindInsufficientQuantity  Kind = "insufficient_quantity"
	KindDivisionByZero        Kind = "division_by_zero"
	KindBusinessRuleViolation Kind = "business_rule_violation"
	KindConcurrencyConflict   Kind = "concurrency_conflict"
	KindNotFound              Kind = "not_found"
	KindInternal              Kind = "internal"
)

// Severity classifies how recoverable a domain error is. CRITICAL errors
// must propagate to the top level; severity is never downgraded while an
// error travels up the stack.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// Error is the base domain error. It carries a kind, a human-readable
// message, structured context for logging/diagnostics, and a severity.
type Error struct {
	Kind     Kind
	Message  string
	Context  map[string]any
	Severity Severity
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithContext attaches a context key/value and returns the error for
// chaining at the raise site.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(kind Kind, severity Severity, message string) *Error {
	return &Error{Kind: kind, Severity: severity, Message: message}
}

// NewValidationError reports an input that violates a format or range rule.
func NewValidationError(message string) *Error {
	return newError(KindValidation, SeverityError, message)
}

// NewCurrencyMismatchError reports arithmetic attempted between two Money
// values of different currencies.
func NewCurrencyMismatchError(op, left, right string) *Error {
	e := newError(KindCurrencyMismatch, SeverityError,
		fmt.Sprintf("cannot %s %s and %s", op, left, right))
	return e.WithContext("op", op).WithContext("left", left).WithContext("right", right)
}

// NewInvalidQuantityError reports a quantity that violates the
// non-negativity invariant at construction.
func NewInvalidQuantityError(value string) *Error {
	e := newError(KindInvalidQuantity, SeverityError,
		fmt.Sprintf("quantity must not be negative, got %s", value))
	return e.WithContext("value", value)
}

// NewInsufficientQuantityError reports a subtraction that would take a
// quantity below zero, e.g. selling more shares than held.
func NewInsufficientQuantityError(have, want string) *Error {
	e := newError(KindInsufficientQuantity, SeverityError,
		fmt.Sprintf("insufficient quantity: have %s, need %s", have, want))
	return e.WithContext("have", have).WithContext("want", want)
}

// NewDivisionByZeroError reports a division with a zero divisor.
func NewDivisionByZeroError(op string) *Error {
	e := newError(KindDivisionByZero, SeverityError,
		fmt.Sprintf("division by zero in %s", op))
	return e.WithContext("op", op)
}

// NewBusinessRuleViolationError reports a broken business rule.
func NewBusinessRuleViolationError(message string) *Error {
	return newError(KindBusinessRuleViolation, SeverityError, message)
}

// NewConcurrencyConflictError reports misuse of a transactional resource,
// e.g. a repository call on a finalized unit of work.
func NewConcurrencyConflictError(message string) *Error {
	return newError(KindConcurrencyConflict, SeverityError, message)
}

// NewNotFoundError reports a repository miss for the given entity/id pair.
func NewNotFoundError(entity string, id any) *Error {
	e := newError(KindNotFound, SeverityWarning,
		fmt.Sprintf("%s %v not found", entity, id))
	return e.WithContext("entity", entity).WithContext("id", id)
}

// NewInternalError wraps an infrastructure failure that the domain cannot
// recover from. Always CRITICAL.
func NewInternalError(message string, cause error) *Error {
	e := newError(KindInternal, SeverityCritical, message)
	e.cause = cause
	return e
}

// KindOf returns the kind of err if it is (or wraps) a domain Error, and
// the empty kind otherwise.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// SeverityOf returns the severity of err if it is (or wraps) a domain
// Error. Non-domain errors are treated as CRITICAL: an unclassified
// failure must never be quietly recovered.
func SeverityOf(err error) Severity {
	var de *Error
	if errors.As(err, &de) {
		return de.Severity
	}
	return SeverityCritical
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
