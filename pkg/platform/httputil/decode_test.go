package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "courthouse/pkg/domain-errors"
)

type noteRequest struct {
	Note string `json:"note"`
}

// verdictRequest implements every preparation hook.
type verdictRequest struct {
	Outcome    string `json:"outcome"`
	sanitized  bool
	normalized bool
}

func (r *verdictRequest) Sanitize() {
	r.sanitized = true
	r.Outcome = strings.TrimSpace(r.Outcome)
}

func (r *verdictRequest) Normalize() {
	r.normalized = true
	r.Outcome = strings.ToLower(r.Outcome)
}

func (r *verdictRequest) Validate() error {
	if r.Outcome == "" {
		return errors.New("outcome is required")
	}
	return nil
}

// judgeRequest fails validation with a domain error.
type judgeRequest struct {
	JudgeID int64 `json:"judge_id"`
}

func (r *judgeRequest) Validate() error {
	if r.JudgeID == 0 {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge_id is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes a valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"note":"hearing moved"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[noteRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "hearing moved", result.Note)
	})

	for name, body := range map[string]string{
		"malformed JSON": `{note:`,
		"empty body":     "",
		"unknown field":  `{"note":"x","notes":"y"}`,
	} {
		t.Run(name+" is a bad request", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			result, ok := DecodeJSON[noteRequest](w, req, logger, ctx, "req-1")

			assert.False(t, ok)
			assert.Nil(t, result)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", decodeError(t, w)["error"])
		})
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("runs every hook in order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"outcome":"  SUING_WON "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[verdictRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.True(t, result.sanitized)
		assert.True(t, result.normalized)
		assert.Equal(t, "suing_won", result.Outcome)
	})

	t.Run("plain validation errors become validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"outcome":"  "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[verdictRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp["error"])
		assert.Contains(t, resp["error_description"], "outcome is required")
	})

	t.Run("domain validation errors keep their code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[judgeRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "unassigned_judge", decodeError(t, w)["error"])
	})
}

func TestPrepareRequest(t *testing.T) {
	assert.NoError(t, PrepareRequest(&noteRequest{}))
	assert.Error(t, PrepareRequest(&verdictRequest{}))
}
