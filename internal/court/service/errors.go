package service

import (
	"errors"
	"fmt"

	"courthouse/internal/sentinel"
	dErrors "courthouse/pkg/domain-errors"
)

// translate maps sentinel errors from the core structures to domain errors.
// Errors that already carry a domain code pass through unchanged.
func translate(err error, subject string) error {
	if err == nil {
		return nil
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, subject+" not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeDuplicateIdentifier, subject+" is already registered")
	case errors.Is(err, sentinel.ErrEmpty):
		return dErrors.New(dErrors.CodeEmpty, subject+" is empty")
	case errors.Is(err, sentinel.ErrExhausted):
		return dErrors.New(dErrors.CodeExhausted, subject+" is exhausted")
	case errors.Is(err, sentinel.ErrInvalidInput):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", subject))
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidStateTransition, fmt.Sprintf("%s is in the wrong state", subject))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("%s: unexpected failure", subject))
	}
}
