package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "courthouse/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	// The response body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and error responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		code := DomainCodeToHTTPCode(domainErr.Code)
		response := map[string]string{
			"error": code,
		}
		if domainErr.Message != "" && status != http.StatusInternalServerError {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, status, response)
		return
	}

	// Fallback for unexpected errors
	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeEmpty:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput,
		dErrors.CodeInvariantViolation, dErrors.CodeInvalidIdentifier:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeDuplicateIdentifier, dErrors.CodeInvalidStateTransition,
		dErrors.CodeUnassignedJudge, dErrors.CodeUnknownJudge, dErrors.CodeExhausted:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeInvalidIdentifier:
		return "invalid_identifier"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeDuplicateIdentifier:
		return "duplicate_identifier"
	case dErrors.CodeInvalidStateTransition:
		return "invalid_state_transition"
	case dErrors.CodeUnassignedJudge:
		return "unassigned_judge"
	case dErrors.CodeUnknownJudge:
		return "unknown_judge"
	case dErrors.CodeEmpty:
		return "queue_empty"
	case dErrors.CodeExhausted:
		return "pool_exhausted"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeInternal:
		return "internal_error"
	default:
		return "internal_error"
	}
}
