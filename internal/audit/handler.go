package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/platform/httputil"
	request "courthouse/pkg/platform/middleware/request"
)

// DefaultListLimit applies when the caller asks for recent events without a limit.
const DefaultListLimit = 100

// Reader is the read side of the audit trail.
type Reader interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Handler lets court clerks inspect the audit trail.
type Handler struct {
	reader Reader
	logger *slog.Logger
}

func NewHandler(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Register mounts the audit routes. They expose actor details, so mount them
// behind the clerk guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleListEvents)
}

type EventsResponse struct {
	Events []Event `json:"events"`
}

// HandleListEvents returns the events for ?subject=, or the most recent
// ?limit= events newest first.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		events []Event
		err    error
	)
	if subject := query.Get("subject"); subject != "" {
		events, err = h.reader.ListBySubject(ctx, subject)
	} else {
		limit := DefaultListLimit
		if raw := query.Get("limit"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n <= 0 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
				return
			}
			limit = n
		}
		events, err = h.reader.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: events})
}
