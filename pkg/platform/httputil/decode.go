package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "courthouse/pkg/domain-errors"
)

// Request preparation hooks, run in this order by PrepareRequest.
type (
	Sanitizable  interface{ Sanitize() }
	Normalizable interface{ Normalize() }
	Validatable  interface{ Validate() error }
)

// DecodeJSON decodes the body into a new T. Unknown fields are rejected so
// typos in optional fields do not silently fall back to defaults. On failure
// it writes a 400 and returns false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return req, true
}

// PrepareRequest runs whichever hooks req implements.
func PrepareRequest(req any) error {
	if h, ok := req.(Sanitizable); ok {
		h.Sanitize()
	}
	if h, ok := req.(Normalizable); ok {
		h.Normalize()
	}
	if h, ok := req.(Validatable); ok {
		return h.Validate()
	}
	return nil
}

// DecodeAndPrepare decodes then prepares the request. Domain errors from
// Validate keep their code; anything else is reported as a validation error.
//
//	req, ok := httputil.DecodeAndPrepare[FileLawsuitRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		var domainErr *dErrors.Error
		if !errors.As(err, &domainErr) {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
