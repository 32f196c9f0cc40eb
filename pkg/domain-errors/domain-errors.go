package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in court terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"

	// Registry and scheduling codes.
	CodeDuplicateIdentifier    Code = "duplicate_identifier"     // codec/registry consistency fault
	CodeInvalidIdentifier      Code = "invalid_identifier"       // malformed or out-of-range id
	CodeInvalidStateTransition Code = "invalid_state_transition" // illegal lawsuit status change
	CodeUnassignedJudge        Code = "unassigned_judge"         // lawsuit has no judge yet
	CodeUnknownJudge           Code = "unknown_judge"            // judge is not bound to a lane

	// Expected outcomes. Callers branch on these; they are not faults.
	CodeEmpty     Code = "empty"
	CodeExhausted Code = "exhausted"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsExpected reports whether err is an outcome callers are expected to branch
// on (not found, empty queue, exhausted pool) rather than a contract violation.
func IsExpected(err error) bool {
	return HasCode(err, CodeNotFound) || HasCode(err, CodeEmpty) || HasCode(err, CodeExhausted)
}
