package sentinel

import "errors"

// Sentinel dependency errors. The registry, scheduler and rotation pools return
// these (optionally wrapped) so the court service can translate them into
// domain errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrEmpty        = errors.New("empty")
	ErrExhausted    = errors.New("exhausted")
)
